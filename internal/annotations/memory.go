package annotations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/spanmark/internal/document"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record), now: time.Now}
}

func cloneObjects(list []document.Span) []document.Span {
	out := make([]document.Span, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

// Load implements Repository.
func (r *MemoryRepository) Load(_ context.Context, path string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[path]
	if !ok {
		return Record{}, &DocumentNotFoundError{Path: path}
	}
	rec.Objects = cloneObjects(rec.Objects)
	return rec, nil
}

// Save implements Repository.
func (r *MemoryRepository) Save(_ context.Context, path, version string, objects []document.Span) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	rec, ok := r.records[path]
	if !ok {
		rec.Document = Document{GUID: uuid.NewString(), Path: path, CreatedAt: now}
	}
	rec.Version = version
	rec.UpdatedAt = now
	rec.Objects = cloneObjects(objects)
	r.records[path] = rec

	rec.Objects = cloneObjects(rec.Objects)
	return rec, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Document)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Delete implements Repository.
func (r *MemoryRepository) Delete(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[path]; !ok {
		return &DocumentNotFoundError{Path: path}
	}
	delete(r.records, path)
	return nil
}

// Close implements Repository.
func (r *MemoryRepository) Close() error {
	return nil
}
