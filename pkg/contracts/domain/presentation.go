package domain

// Trend marks the direction shown next to a metric value.
type Trend string

const (
	TrendNone Trend = ""
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Arrow returns the glyph displayed for the trend.
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return ""
	}
}

// Metric is a label/value/unit/trend tuple for a display container.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
	Trend Trend  `json:"trend,omitempty"`
}

// ChartSeries is a categorical bar series.
type ChartSeries struct {
	Title      string   `json:"title"`
	XAxisTitle string   `json:"x_axis_title"`
	YAxisTitle string   `json:"y_axis_title"`
	Labels     []string `json:"labels"`
	Values     []int    `json:"values"`
}

// Table is a grid of preformatted cells.
type Table struct {
	Title   string     `json:"title"`
	Caption string     `json:"caption,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// StockCard is the detail card shown per symbol in the date view.
type StockCard struct {
	Symbol          string   `json:"symbol"`
	SeriesType      string   `json:"series_type"`
	Sector          string   `json:"sector"`
	Industry        string   `json:"industry"`
	Price           string   `json:"price"`
	Change          string   `json:"change"`
	Trend           Trend    `json:"trend,omitempty"`
	Metrics         []Metric `json:"metrics"`
	About           string   `json:"about,omitempty"`
	Link            string   `json:"link"`
	OccurrenceCount int      `json:"occurrence_count"`
}
