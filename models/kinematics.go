package models

// Колонка времени в экспорте Kinovea.
const TimeColumn = "Time (ms)"

// MetricColors fixes the chart colour of every known Kinovea metric.
var MetricColors = map[string]string{
	"TE":          "#1f77b4",
	"FK":          "#ff7f0e",
	"TS":          "#2ca02c",
	"FH":          "#d62728",
	"Angle 1 - o": "#9467bd",
	"Angle 1 - a": "#8c564b",
	"Angle 1 - b": "#e377c2",
}

// KinematicSeries is one plotted line.
type KinematicSeries struct {
	Metric string    `json:"metric"`
	Color  string    `json:"color,omitempty"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

// KinematicFrame is the tabular payload consumed by the chart renderer.
type KinematicFrame struct {
	SessionID        int               `json:"session_id"`
	XColumn          string            `json:"x_column"`
	YAxisTitle       string            `json:"y_axis_title,omitempty"`
	Columns          []string          `json:"columns"`
	Head             [][]string        `json:"head"`
	AvailableMetrics []string          `json:"available_metrics"`
	Series           []KinematicSeries `json:"series"`
	Warning          string            `json:"warning,omitempty"`
}
