package dataset

import (
	"bytes"
	"testing"

	"battwatch/domain/artifact"
	"battwatch/internal/errors"
	"battwatch/internal/store"
)

func newTestLoader(t *testing.T) (*Loader, *store.ArtifactStore) {
	t.Helper()
	s, err := store.NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	return NewLoader(s), s
}

func TestLoadMissingDatasetIsNotFound(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load()
	if err == nil {
		t.Fatal("expected error when no dataset was uploaded")
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND code, got %s", errors.GetCode(err))
	}
}

func TestLoadAfterUpload(t *testing.T) {
	loader, s := newTestLoader(t)

	if _, _, err := s.Save(artifact.KindDataset, bytes.NewReader([]byte(sampleCSV))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ds, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Observations) != 3 {
		t.Errorf("observations = %d, want 3", len(ds.Observations))
	}
}

func TestReuploadReplacesDataset(t *testing.T) {
	loader, s := newTestLoader(t)

	if _, _, err := s.Save(artifact.KindDataset, bytes.NewReader([]byte(sampleCSV))); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := loader.Load(); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	smaller := "battery_id,cycle,voltage\nB0099,1,3.9\n"
	if _, _, err := s.Save(artifact.KindDataset, bytes.NewReader([]byte(smaller))); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	loader.Invalidate()

	ds, err := loader.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(ds.Observations) != 1 || ds.Observations[0].BatteryID != "B0099" {
		t.Errorf("dataset not replaced by re-upload: %+v", ds.Observations)
	}
}
