// Package kinematics parses Kinovea CSV exports into chart-ready series.
package kinematics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Dosada05/pitch-tracker/models"
)

const (
	headRows   = 5
	yAxisTitle = "Speed (px/s)"
	rowIndex   = "Row"
)

var ErrEmptyCSV = errors.New("csv has no header row")

// knownMetricOrder keeps series in a stable order regardless of map iteration.
var knownMetricOrder = []string{"TE", "FK", "TS", "FH", "Angle 1 - o", "Angle 1 - a", "Angle 1 - b"}

// Parse reads a Kinovea export. With a "Time (ms)" column the frame carries one series per
// selected known metric; otherwise every numeric column is plotted against the row index.
// An empty selection means all available metrics.
func Parse(r io.Reader, selected []string) (*models.KinematicFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCSV
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	rows := records[1:]

	frame := &models.KinematicFrame{
		Columns:          columns,
		Head:             head(rows),
		AvailableMetrics: make([]string, 0),
		Series:           make([]models.KinematicSeries, 0),
	}

	timeIdx := indexOf(columns, models.TimeColumn)
	if timeIdx < 0 {
		frame.XColumn = rowIndex
		frame.Warning = fmt.Sprintf("Column '%s' not found. Plotting by row index.", models.TimeColumn)
		for i, name := range columns {
			if series, ok := numericSeries(rows, -1, i); ok {
				series.Metric = name
				series.Color = models.MetricColors[name]
				frame.Series = append(frame.Series, series)
			}
		}
		return frame, nil
	}

	frame.XColumn = models.TimeColumn
	frame.YAxisTitle = yAxisTitle

	for _, metric := range knownMetricOrder {
		if indexOf(columns, metric) >= 0 {
			frame.AvailableMetrics = append(frame.AvailableMetrics, metric)
		}
	}

	wanted := make(map[string]bool, len(selected))
	for _, m := range selected {
		wanted[strings.TrimSpace(m)] = true
	}

	for _, metric := range frame.AvailableMetrics {
		if len(wanted) > 0 && !wanted[metric] {
			continue
		}
		series, _ := numericSeries(rows, timeIdx, indexOf(columns, metric))
		series.Metric = metric
		series.Color = models.MetricColors[metric]
		frame.Series = append(frame.Series, series)
	}
	return frame, nil
}

// numericSeries собирает точки (x, y). Строки с нечисловыми или пустыми значениями пропускаются.
// xIdx < 0 означает номер строки по оси X. ok=false, если колонка не числовая.
func numericSeries(rows [][]string, xIdx, yIdx int) (models.KinematicSeries, bool) {
	series := models.KinematicSeries{X: make([]float64, 0, len(rows)), Y: make([]float64, 0, len(rows))}
	numeric := true
	for i, row := range rows {
		yRaw := cell(row, yIdx)
		if yRaw == "" {
			continue
		}
		y, err := strconv.ParseFloat(yRaw, 64)
		if err != nil {
			numeric = false
			continue
		}
		x := float64(i)
		if xIdx >= 0 {
			x, err = strconv.ParseFloat(cell(row, xIdx), 64)
			if err != nil {
				continue
			}
		}
		series.X = append(series.X, x)
		series.Y = append(series.Y, y)
	}
	return series, numeric && len(series.Y) > 0
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func head(rows [][]string) [][]string {
	n := len(rows)
	if n > headRows {
		n = headRows
	}
	out := make([][]string, n)
	copy(out, rows[:n])
	return out
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
