package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"battwatch/domain/artifact"
	"battwatch/internal/errors"
)

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	s, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	return s
}

func TestSaveWritesExactBytes(t *testing.T) {
	s := newTestStore(t)
	payload := []byte("battery_id,cycle\nB0005,1\nB0005,2\n")

	written, sum, err := s.Save(artifact.KindDataset, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != int64(len(payload)) {
		t.Errorf("written = %d, want %d", written, len(payload))
	}
	if sum == "" {
		t.Error("expected a checksum")
	}

	stored, err := os.ReadFile(s.Path(artifact.KindDataset))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Errorf("stored bytes differ from payload")
	}
}

func TestSaveOverwritesPriorContent(t *testing.T) {
	s := newTestStore(t)

	first := []byte("first upload that is fairly long")
	second := []byte("second")

	if _, _, err := s.Save(artifact.KindXGBoost, bytes.NewReader(first)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, _, err := s.Save(artifact.KindXGBoost, bytes.NewReader(second)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	stored, err := os.ReadFile(s.Path(artifact.KindXGBoost))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(stored, second) {
		t.Errorf("stored = %q, want only the second upload", stored)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.Save(artifact.KindLSTM, bytes.NewReader([]byte("weights"))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path(artifact.KindLSTM)))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the artifact file, found %v", names)
	}
}

func TestOpenMissingArtifactIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open(artifact.KindSVM)
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND code, got %s", errors.GetCode(err))
	}
}

func TestChecksumMatchesSave(t *testing.T) {
	s := newTestStore(t)

	_, saved, err := s.Save(artifact.KindSVM, bytes.NewReader([]byte("svm model bytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	recomputed, err := s.Checksum(artifact.KindSVM)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if recomputed != saved {
		t.Errorf("Checksum = %s, want %s", recomputed, saved)
	}
}
