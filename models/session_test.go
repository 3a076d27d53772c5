package models

import (
	"testing"
	"time"
)

func TestSessionHasKinematics(t *testing.T) {
	csv := "https://x.supabase.co/storage/v1/object/public/csvs/run1_1700000000.CSV"
	video := "https://x.supabase.co/storage/v1/object/public/videos/run1_1700000000.mp4"
	empty := ""

	tests := []struct {
		name string
		ref  *string
		want bool
	}{
		{"csv url", &csv, true},
		{"video url stored in kinovea_csv", &video, false},
		{"null", nil, false},
		{"empty", &empty, false},
	}
	for _, tt := range tests {
		s := Session{KinoveaCSV: tt.ref}
		if got := s.HasKinematics(); got != tt.want {
			t.Errorf("%s: HasKinematics() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSessionLabel(t *testing.T) {
	s := Session{
		Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		SessionName: "Bullpen",
	}
	if got := s.Label(); got != "2024-03-09 - Bullpen" {
		t.Fatalf("Label() = %q", got)
	}
}
