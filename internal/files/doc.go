// Package files locates the metrics file to load.
//
// The configured source may be a file or a directory. For a directory,
// Discovery.Resolve picks the most recently modified .csv or .xlsx file,
// so dropping a newer export next to the old one and reloading is enough to
// switch datasets.
//
//	discovery := files.NewDiscovery("", logger)
//	path, err := discovery.Resolve("data/")
package files
