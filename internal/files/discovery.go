package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoSource is returned when a directory holds no metrics file.
var ErrNoSource = errors.New("no metrics file found")

// SourceExtensions lists the file types the normalizer reads.
var SourceExtensions = []string{".csv", ".xlsx", ".xlsm"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates metrics files. Relative paths resolve against basePath.
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		basePath: basePath,
		logger:   logger.With(slog.String("component", "discovery")),
	}
}

func (d *Discovery) fullPath(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// Resolve returns the file to load for path. A file path is validated and
// returned as is; a directory resolves to its most recently modified
// metrics file.
func (d *Discovery) Resolve(path string) (string, error) {
	full := d.fullPath(path)
	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", full, err)
	}
	if !info.IsDir() {
		if err := d.ValidateFile(full); err != nil {
			return "", err
		}
		return full, nil
	}

	sources, err := d.FindSources(full)
	if err != nil {
		return "", err
	}
	latest, ok := GetLatestFile(sources)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoSource, full)
	}

	d.logger.Info("source resolved from directory",
		slog.String("directory", full),
		slog.String("file", latest.Name),
		slog.Int("candidates", len(sources)))
	return latest.Path, nil
}

// FindSources lists the metrics files in dir, oldest first. Excel lock
// files (~$name.xlsx) are skipped.
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	fullPath := d.fullPath(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !IsSourceFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Sort by modification time (oldest first)
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// ValidateFile checks that path exists, is a regular file and is readable.
func (d *Discovery) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	d.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// IsSourceFile reports whether name has a metrics file extension and is
// not an Excel lock file.
func IsSourceFile(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range SourceExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
