package library

import (
	"path/filepath"
	"testing"

	"github.com/chartworks/nashville/core/errors"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var sampleLines = []string{
	"Title{Amazing Grace}   Hymn",
	"",
	"1  1/3  4  1",
	"A - maz - ing grace",
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)

	saved, err := s.Save("amazing-grace", sampleLines)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("saved chart should have an id")
	}
	if saved.Fingerprint == "" {
		t.Error("saved chart should have a fingerprint")
	}

	got, err := s.Get("amazing-grace")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != saved.ID {
		t.Errorf("ID = %q, want %q", got.ID, saved.ID)
	}
	if len(got.Lines()) != len(sampleLines) {
		t.Errorf("Lines() returned %d lines, want %d", len(got.Lines()), len(sampleLines))
	}
	if got.Lines()[2] != "1  1/3  4  1" {
		t.Errorf("line 3 = %q", got.Lines()[2])
	}
}

func TestSaveUpdatesExisting(t *testing.T) {
	s := openStore(t)

	first, err := s.Save("chart", []string{"1  4  5"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := s.Save("chart", []string{"1  4  5  1"})
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("update changed id: %q -> %q", first.ID, second.ID)
	}
	if second.Fingerprint == first.Fingerprint {
		t.Error("fingerprint should change with the source")
	}

	got, err := s.Get("chart")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Source != "1  4  5  1" {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get("nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Errorf("expected NotFoundError with id, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := openStore(t)

	for _, name := range []string{"zebra", "alpha", "mid"} {
		if _, err := s.Save(name, []string{"1"}); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	charts, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(charts) != 3 {
		t.Fatalf("List returned %d charts, want 3", len(charts))
	}
	for i, want := range []string{"alpha", "mid", "zebra"} {
		if charts[i].Name != want {
			t.Errorf("charts[%d].Name = %q, want %q", i, charts[i].Name, want)
		}
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)

	if _, err := s.Save("gone", []string{"1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("gone"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted chart should be gone, got %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func TestEmptyNameRejected(t *testing.T) {
	s := openStore(t)

	if _, err := s.Save("  ", []string{"1"}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRenderHistory(t *testing.T) {
	s := openStore(t)

	c, err := s.Save("chart", []string{"1  4"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, k := range []string{"C", "Db", "NNS"} {
		if err := s.RecordRender(c.ID, k); err != nil {
			t.Fatalf("RecordRender(%s) failed: %v", k, err)
		}
	}

	renders, err := s.Renders(c.ID)
	if err != nil {
		t.Fatalf("Renders failed: %v", err)
	}
	if len(renders) != 3 {
		t.Fatalf("Renders returned %d rows, want 3", len(renders))
	}
	// Newest first.
	if renders[0].KeyName != "NNS" {
		t.Errorf("renders[0].KeyName = %q, want NNS", renders[0].KeyName)
	}
}
