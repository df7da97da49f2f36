package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/cvforge/cvforge/internal/core/document"
)

// MemoryBackend keeps documents in process memory. Used by tests and as a
// scratch backend; it honors the same error contract as the durable
// implementations.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string]*document.Resume
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]*document.Resume)}
}

func (b *MemoryBackend) List(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (b *MemoryBackend) Get(_ context.Context, id string) (*document.Resume, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.docs[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return doc.Clone(), nil
}

func (b *MemoryBackend) Save(_ context.Context, id string, doc *document.Resume) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[id] = doc.Clone()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(b.docs, id)
	return nil
}

func (b *MemoryBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.docs[id]
	return ok, nil
}
