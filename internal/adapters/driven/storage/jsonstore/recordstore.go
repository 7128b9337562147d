// Package jsonstore persists ProcessingRecords as one JSON artifact per
// node under the output json root, mirroring the repository's directory
// structure. Folder records are written as "summary.json" inside the
// folder's directory; file records as "<name>.json" beside it.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// folderRecordName is the artifact name for folder records.
const folderRecordName = "summary.json"

// RecordStore is a file-per-node record store rooted at a directory.
// Independent keys map to independent files, so concurrent writers on
// different node paths never contend.
type RecordStore struct {
	root string
}

// New creates a record store rooted at root, creating it if needed.
func New(root string) (*RecordStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create record store root: %w", err)
	}
	return &RecordStore{root: root}, nil
}

// Get retrieves the record for a node path.
func (s *RecordStore) Get(_ context.Context, path string) (*domain.ProcessingRecord, error) {
	// The node kind is unknown from the path alone; try the file layout
	// first, then the folder layout.
	for _, target := range []string{s.filePath(path), s.folderPath(path)} {
		data, err := os.ReadFile(target)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record %s: %w", path, err)
		}

		var record domain.ProcessingRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", path, err)
		}
		return &record, nil
	}
	return nil, fmt.Errorf("record %q: %w", path, domain.ErrNotFound)
}

// Save writes a record durably via a temp file and rename, so a crash
// mid-write never leaves a truncated artifact.
func (s *RecordStore) Save(_ context.Context, record *domain.ProcessingRecord) error {
	target := s.filePath(record.Path)
	if record.Kind == domain.NodeFolder {
		target = s.folderPath(record.Path)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %s: %w", record.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".record-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %s: %w", record.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record %s: %w", record.Path, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store record %s: %w", record.Path, err)
	}
	return nil
}

// List returns all stored records.
func (s *RecordStore) List(_ context.Context) ([]domain.ProcessingRecord, error) {
	var records []domain.ProcessingRecord
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var record domain.ProcessingRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *RecordStore) filePath(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path)+".json")
}

func (s *RecordStore) folderPath(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path), folderRecordName)
}
