// Package renderer turns dashboard responses into markdown reports for the
// terminal. Reports are built with nao1215/markdown and printed through
// glamour unless plain output is requested. HTML converts the same markdown
// into a web page for the report endpoint.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"stockpulse/internal/exporter"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

// DefaultWordWrap is the terminal width used by Print.
const DefaultWordWrap = 100

// Print writes markdown to w, styled for the terminal unless plain is set.
func Print(w io.Writer, markdown string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// ViewMarkdown renders a dashboard view.
func ViewMarkdown(v *api.ViewResponse) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(v.Title)
	if v.Warning != "" {
		doc.Blockquote(v.Warning)
	}

	if len(v.Metrics) > 0 {
		doc.Table(metricsTable(v.Metrics))
	}
	if v.SectorChart != nil && len(v.SectorChart.Labels) > 0 {
		doc.H2(v.SectorChart.Title)
		doc.Table(chartTable(v.SectorChart))
	}

	for _, stock := range v.Stocks {
		writeSymbolAnalysis(doc, stock)
	}
	for _, card := range v.Cards {
		writeCard(doc, card)
	}
	for _, table := range v.Tables {
		writeTable(doc, table)
	}

	return doc.String()
}

// CatalogMarkdown renders the dataset description.
func CatalogMarkdown(c *api.Catalog) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Dataset")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", c.Source},
			{"Records", strconv.Itoa(c.RecordCount)},
			{"First Date", exporter.FormatLongDate(c.FirstDate)},
			{"Last Date", exporter.FormatLongDate(c.LastDate)},
			{"Symbols", strconv.Itoa(len(c.Symbols))},
		},
	})

	if len(c.Months) > 0 {
		doc.H2("Months")
		doc.BulletList(c.Months...)
	}
	return doc.String()
}

// TrajectoryMarkdown renders the running-high series of a symbol.
func TrajectoryMarkdown(t *domain.HighTrajectory) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s 52-Week High Trajectory", t.Symbol))
	doc.PlainText(fmt.Sprintf("Peak: %s", exporter.FormatScaledCurrency(t.Peak())))

	rows := make([][]string, 0, len(t.HighPoints))
	for _, r := range t.HighPoints {
		rows = append(rows, []string{
			exporter.FormatLongDate(r.Date),
			exporter.FormatScaledCurrency(r.LastTradedPrice),
			exporter.FormatTrendArrow(r.PercentChange),
		})
	}
	if len(rows) == 0 {
		doc.Blockquote(fmt.Sprintf("No price data found for symbol %s", t.Symbol))
		return doc.String()
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Price", "% Change"},
		Rows:      rows,
	})
	return doc.String()
}

// SearchMarkdown renders company search hits.
func SearchMarkdown(r *api.SearchResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Search: %s", r.Query))
	if len(r.Hits) == 0 {
		doc.Blockquote("No companies matched.")
		return doc.String()
	}

	rows := make([][]string, 0, len(r.Hits))
	for _, hit := range r.Hits {
		rows = append(rows, []string{
			md.Bold(hit.Symbol),
			orNA(hit.Sector),
			orNA(hit.Industry),
			strconv.FormatFloat(hit.Score, 'f', 2, 64),
		})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Symbol", "Sector", "Industry", "Score"},
		Rows:      rows,
	})
	doc.PlainText(fmt.Sprintf("%d of %d matches", len(r.Hits), r.Total))
	return doc.String()
}

// SymbolsMarkdown renders the symbol picker result as a bullet list.
func SymbolsMarkdown(l *api.SymbolList) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Symbols"
	if l.Prefix != "" {
		title = fmt.Sprintf("Symbols starting with %s", strings.ToUpper(l.Prefix))
	}
	doc.H1(title)
	if len(l.Symbols) == 0 {
		doc.Blockquote("No symbols found.")
		return doc.String()
	}
	doc.BulletList(l.Symbols...)
	return doc.String()
}

func writeSymbolAnalysis(doc *md.Markdown, s api.SymbolAnalysis) {
	doc.H2(s.Title)
	if s.Warning != "" {
		doc.Blockquote(s.Warning)
		return
	}
	if len(s.Metrics) > 0 {
		doc.Table(metricsTable(s.Metrics))
	}
	if s.Timeline != nil {
		doc.H3(s.Timeline.Title)
		doc.Table(tableSet(*s.Timeline))
	}
}

func writeCard(doc *md.Markdown, c domain.StockCard) {
	doc.H2(fmt.Sprintf("%s (%s)", c.Symbol, c.SeriesType))
	doc.PlainText(fmt.Sprintf("%s %s %s", md.Bold(c.Price), c.Change, c.Trend.Arrow()))
	doc.PlainText(fmt.Sprintf("%s · %s", c.Sector, c.Industry))
	doc.Table(metricsTable(c.Metrics))
	if c.About != "" {
		doc.PlainText(md.Italic(c.About))
	}
	if c.Link != "" {
		doc.PlainText(md.Link("Company profile", c.Link))
	}
}

func writeTable(doc *md.Markdown, t domain.Table) {
	doc.H2(t.Title)
	if t.Caption != "" {
		doc.PlainText(md.Italic(t.Caption))
	}
	doc.Table(tableSet(t))
}

func metricsTable(metrics []domain.Metric) md.TableSet {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		value := m.Value
		if m.Unit != "" && value != domain.NotAvailable {
			value += " " + m.Unit
		}
		if arrow := m.Trend.Arrow(); arrow != "" {
			value += " " + arrow
		}
		rows = append(rows, []string{m.Label, value})
	}
	return md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows:      rows,
	}
}

func chartTable(c *domain.ChartSeries) md.TableSet {
	rows := make([][]string, 0, len(c.Labels))
	for i, label := range c.Labels {
		value := ""
		if i < len(c.Values) {
			value = strconv.Itoa(c.Values[i])
		}
		rows = append(rows, []string{label, value})
	}
	return md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{c.XAxisTitle, c.YAxisTitle},
		Rows:      rows,
	}
}

func tableSet(t domain.Table) md.TableSet {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = escapeCell(row[j])
			}
		}
		rows[i] = cells
	}
	return md.TableSet{Header: t.Columns, Rows: rows}
}

// escapeCell keeps a cell on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}
