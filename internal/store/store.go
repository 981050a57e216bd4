package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"battwatch/domain/artifact"
	"battwatch/internal/errors"
)

// ArtifactStore persists uploaded artifact bytes under a base
// directory, one fixed filename per artifact kind. A new upload fully
// replaces any prior content for that kind.
type ArtifactStore struct {
	baseDir string
}

// NewArtifactStore creates a store rooted at baseDir, creating the
// directory if needed.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.StorageError("failed to create storage directory", err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

// Path returns the fixed on-disk path for an artifact kind.
func (s *ArtifactStore) Path(kind artifact.Kind) string {
	return filepath.Join(s.baseDir, kind.Filename())
}

// Save writes the stream verbatim to the kind's fixed path. The bytes
// land in a temp file first and are renamed over the target, so a
// reader never observes a partially written artifact. Returns the
// byte count and SHA-256 of what was written.
func (s *ArtifactStore) Save(kind artifact.Kind, r io.Reader) (int64, string, error) {
	target := s.Path(kind)

	tmp, err := os.CreateTemp(s.baseDir, kind.Filename()+".upload-*")
	if err != nil {
		return 0, "", errors.StorageError("failed to create temp file", err)
	}
	tmpPath := tmp.Name()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, "", errors.StorageError("failed to write upload", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, "", errors.StorageError("failed to finalize upload", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return 0, "", errors.StorageError(fmt.Sprintf("failed to replace %s", kind.Filename()), err)
	}

	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Open returns a reader for the stored artifact. A missing artifact
// yields a NOT_FOUND error so callers can render the upload prompt.
func (s *ArtifactStore) Open(kind artifact.Kind) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(kind.Label())
		}
		return nil, errors.StorageError("failed to open artifact", err)
	}
	return f, nil
}

// Exists reports whether the artifact for a kind has been uploaded.
func (s *ArtifactStore) Exists(kind artifact.Kind) bool {
	_, err := os.Stat(s.Path(kind))
	return err == nil
}

// Stat returns size and modification time info for a stored artifact.
func (s *ArtifactStore) Stat(kind artifact.Kind) (os.FileInfo, error) {
	info, err := os.Stat(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(kind.Label())
		}
		return nil, errors.StorageError("failed to stat artifact", err)
	}
	return info, nil
}

// Checksum computes the SHA-256 of the stored artifact.
func (s *ArtifactStore) Checksum(kind artifact.Kind) (string, error) {
	f, err := s.Open(kind)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", errors.StorageError("failed to hash artifact", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
