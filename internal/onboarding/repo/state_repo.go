package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/functionland/blox-wizard/internal/onboarding/entity"
)

// Repository persists the wizard state.
type Repository interface {
	// Load returns the stored state, or a zero state when nothing is stored.
	Load(ctx context.Context) (*entity.State, error)
	Save(ctx context.Context, s *entity.State) error
	Delete(ctx context.Context) error
}

// FileRepo keeps the state in a JSON file. Writes go through a temp file and a
// rename so a crash never leaves a half-written state behind.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileRepo constructs a FileRepo and makes sure the parent directory exists.
func NewFileRepo(path string) (*FileRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	return &FileRepo{path: path}, nil
}

func (r *FileRepo) Load(ctx context.Context) (*entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return &entity.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var s entity.State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}

func (r *FileRepo) Save(ctx context.Context, s *entity.State) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (r *FileRepo) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// MemoryRepo keeps the state in memory; used by tests and when no state file is configured.
type MemoryRepo struct {
	mu sync.Mutex
	s  *entity.State
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Load(ctx context.Context) (*entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.s == nil {
		return &entity.State{}, nil
	}
	cp := *r.s
	return &cp, nil
}

func (r *MemoryRepo) Save(ctx context.Context, s *entity.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.s = &cp
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = nil
	return nil
}
