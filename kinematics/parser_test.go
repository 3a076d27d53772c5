package kinematics

import (
	"errors"
	"strings"
	"testing"
)

const runCSV = `Time (ms),TE,FK,Label
0,1.5,2.0,a
10,1.7,2.2,b
20,1.9,,c
30,2.1,2.6,d
40,2.3,2.8,e
50,2.5,3.0,f
`

func TestParseWithTimeColumn(t *testing.T) {
	frame, err := Parse(strings.NewReader(runCSV), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if frame.XColumn != "Time (ms)" {
		t.Errorf("XColumn = %q", frame.XColumn)
	}
	if frame.Warning != "" {
		t.Errorf("unexpected warning %q", frame.Warning)
	}
	if got := strings.Join(frame.AvailableMetrics, ","); got != "TE,FK" {
		t.Errorf("AvailableMetrics = %q, want TE,FK", got)
	}
	if len(frame.Head) != 5 {
		t.Errorf("len(Head) = %d, want 5", len(frame.Head))
	}
	if len(frame.Series) != 2 {
		t.Fatalf("len(Series) = %d, want 2", len(frame.Series))
	}
	te := frame.Series[0]
	if te.Metric != "TE" || te.Color != "#1f77b4" || len(te.Y) != 6 {
		t.Errorf("TE series = %+v", te)
	}
	fk := frame.Series[1]
	if len(fk.Y) != 5 || fk.X[2] != 30 {
		t.Errorf("FK series must skip the empty cell, got X=%v", fk.X)
	}
}

func TestParseSelectedMetrics(t *testing.T) {
	frame, err := Parse(strings.NewReader(runCSV), []string{"FK", "TS"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(frame.Series) != 1 || frame.Series[0].Metric != "FK" {
		t.Errorf("Series = %+v, want only FK", frame.Series)
	}
}

func TestParseFallsBackToRowIndex(t *testing.T) {
	csvData := "A,B,Name\n1,2,x\n3,4,y\n"
	frame, err := Parse(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if frame.XColumn != "Row" || frame.Warning == "" {
		t.Errorf("expected row-index fallback with warning, got %q / %q", frame.XColumn, frame.Warning)
	}
	if len(frame.Series) != 2 {
		t.Fatalf("numeric columns = %d, want 2", len(frame.Series))
	}
	if frame.Series[1].X[1] != 1 || frame.Series[1].Y[1] != 4 {
		t.Errorf("B series = %+v", frame.Series[1])
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), nil); !errors.Is(err, ErrEmptyCSV) {
		t.Errorf("err = %v, want ErrEmptyCSV", err)
	}
}

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		source      string
		wantEmbed   string
		wantWarning bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=5", "https://www.youtube.com/embed/dQw4w9WgXcQ", false},
		{"https://youtube.com/shorts/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", false},
		{"https://www.youtube.com/channel/abc", "", true},
		{"https://p.supabase.co/storage/v1/object/public/videos/clip_1.mp4", "https://p.supabase.co/storage/v1/object/public/videos/clip_1.mp4", false},
		{"", "", true},
	}
	for _, tt := range tests {
		embed, warning := EmbedURL(tt.source)
		if embed != tt.wantEmbed || (warning != "") != tt.wantWarning {
			t.Errorf("EmbedURL(%q) = (%q, %q)", tt.source, embed, warning)
		}
	}
}
