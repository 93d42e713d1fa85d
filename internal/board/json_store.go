package board

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONStore persists the whole board as one JSON document on local disk,
// `{"tasks": [...]}`. Every mutation rewrites the complete file, so a write
// either fully lands or the prior document stays intact. Single-process
// assumption: concurrent writers from separate processes would race.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Mode() string { return "json" }

func (s *JSONStore) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.write(Board{Tasks: []Task{}})
}

func (s *JSONStore) read() (Board, error) {
	if err := s.ensureFile(); err != nil {
		return Board{}, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Board{}, err
	}
	var b Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return Board{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if err := validateBoard(b); err != nil {
		// stored-state corruption is a server fault, not caller input
		return Board{}, fmt.Errorf("invalid board document %s: %v", s.path, err)
	}
	return b, nil
}

func (s *JSONStore) write(b Board) error {
	if err := validateBoard(b); err != nil {
		return err
	}
	if b.Tasks == nil {
		b.Tasks = []Task{}
	}
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(raw, '\n'), 0o644)
}

func validateBoard(b Board) error {
	for _, t := range b.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll implements Store.ReadAll. File order is insertion order with the
// newest creations first; display ordering is the consumer's concern.
func (s *JSONStore) ReadAll(ctx context.Context) ([]Task, error) {
	b, err := s.read()
	if err != nil {
		return nil, err
	}
	return b.Tasks, nil
}

// Upsert implements Store.Upsert via full read-modify-write of the document.
func (s *JSONStore) Upsert(ctx context.Context, patch TaskPatch) (Task, error) {
	b, err := s.read()
	if err != nil {
		return Task{}, err
	}
	now := time.Now().UTC()

	idx := -1
	for i, t := range b.Tasks {
		if t.ID == patch.ID {
			idx = i
			break
		}
	}

	if idx == -1 {
		created := Merge(nil, patch, now)
		if err := created.Validate(); err != nil {
			return Task{}, err
		}
		b.Tasks = append([]Task{created}, b.Tasks...)
		if err := s.write(b); err != nil {
			return Task{}, err
		}
		return created, nil
	}

	next := Merge(&b.Tasks[idx], patch, now)
	if err := next.Validate(); err != nil {
		return Task{}, err
	}
	b.Tasks[idx] = next
	if err := s.write(b); err != nil {
		return Task{}, err
	}
	return next, nil
}

// Delete implements Store.Delete by filtering the task out of the document.
func (s *JSONStore) Delete(ctx context.Context, id string) error {
	b, err := s.read()
	if err != nil {
		return err
	}
	kept := b.Tasks[:0]
	for _, t := range b.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	b.Tasks = kept
	return s.write(b)
}
