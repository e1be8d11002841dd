package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactKind is one of the output files produced for a batch.
type ArtifactKind string

const (
	ArtifactCSV     ArtifactKind = ".csv"
	ArtifactJSON    ArtifactKind = ".json"
	ArtifactSummary ArtifactKind = "_summary.txt"
)

// Artifacts handles the output files for one batch.
// Files are stored at: {prefix}.csv, {prefix}.json, {prefix}_summary.txt
type Artifacts struct {
	prefix string
}

// NewArtifacts creates an artifact set, ensuring the prefix's directory exists.
func NewArtifacts(prefix string) (*Artifacts, error) {
	// MkdirAll creates the directory and all parents (like mkdir -p).
	if err := os.MkdirAll(filepath.Dir(prefix), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Artifacts{prefix: prefix}, nil
}

// Path returns the filesystem path of an artifact.
func (a *Artifacts) Path(kind ArtifactKind) string {
	return a.prefix + string(kind)
}

// Write saves an artifact. Data goes to a temp file in the same directory
// first and is renamed into place, so an interrupted write never leaves a
// truncated output behind.
func (a *Artifacts) Write(kind ArtifactKind, data []byte) error {
	path := a.Path(kind)
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	// CreateTemp uses 0600; outputs are meant to be shared like any report.
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// Read reads an artifact back from disk.
func (a *Artifacts) Read(kind ArtifactKind) ([]byte, error) {
	path := a.Path(kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact not found: %s", path)
		}
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

// Exists checks if an artifact exists on disk.
func (a *Artifacts) Exists(kind ArtifactKind) bool {
	_, err := os.Stat(a.Path(kind))
	return err == nil
}
