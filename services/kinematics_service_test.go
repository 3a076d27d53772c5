package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleCSV = "Time (ms),TE,FK\n0,1.0,2.0\n10,1.5,2.5\n"

func newKinematicsFixture() (*memDB, *fakeBlobStore, KinematicsService) {
	db := newMemDB()
	blobs := newFakeBlobStore()
	return db, blobs, NewKinematicsService(&fakeSessionRepo{db: db}, blobs, http.DefaultClient)
}

func TestKinematicsFromBlobStore(t *testing.T) {
	db, blobs, svc := newKinematicsFixture()
	p := db.addPlayer("Ann", "Hawks", coach.Email)
	csvURL := blobs.put("csvs", "run1_1.csv", []byte(sampleCSV))
	s := db.addSession(p.ID, "s", coach.Email, "", &csvURL)

	frame, err := svc.Frame(context.Background(), coach, s.ID, []string{"TE"})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if frame.SessionID != s.ID || len(frame.Series) != 1 || frame.Series[0].Metric != "TE" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestKinematicsOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	db, _, svc := newKinematicsFixture()
	p := db.addPlayer("Ann", "Hawks", coach.Email)
	s := db.addSession(p.ID, "s", coach.Email, "", strPtr(srv.URL+"/exports/run1.csv"))

	frame, err := svc.Frame(context.Background(), coach, s.ID, nil)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if len(frame.AvailableMetrics) != 2 {
		t.Errorf("available metrics = %v", frame.AvailableMetrics)
	}
}

func TestKinematicsForVideoSession(t *testing.T) {
	db, _, svc := newKinematicsFixture()
	p := db.addPlayer("Ann", "Hawks", coach.Email)
	videoURL := testPublicBase + "/videos/clip_1.mp4"
	s := db.addSession(p.ID, "s", coach.Email, videoURL, &videoURL)

	if _, err := svc.Frame(context.Background(), coach, s.ID, nil); !errors.Is(err, ErrNoKinematics) {
		t.Errorf("err = %v, want ErrNoKinematics", err)
	}
}

func TestKinematicsForeignSessionIsEmpty(t *testing.T) {
	db, blobs, svc := newKinematicsFixture()
	p := db.addPlayer("Bob", "Owls", otherOne.Email)
	csvURL := blobs.put("csvs", "run1_1.csv", []byte(sampleCSV))
	s := db.addSession(p.ID, "s", otherOne.Email, "", &csvURL)

	frame, err := svc.Frame(context.Background(), coach, s.ID, nil)
	if err != nil || frame != nil {
		t.Errorf("Frame() = %v, %v, want nil, nil", frame, err)
	}
}
