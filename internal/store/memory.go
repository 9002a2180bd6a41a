package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps documents in process memory
type MemoryBackend struct {
	mutex     sync.RWMutex
	documents map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{documents: make(map[string][]byte)}
}

func (backend *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backend.mutex.RLock()
	defer backend.mutex.RUnlock()

	document, ok := backend.documents[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(document), nil
}

func (backend *MemoryBackend) Put(ctx context.Context, key string, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	backend.mutex.Lock()
	defer backend.mutex.Unlock()

	backend.documents[key] = slices.Clone(document)
	return nil
}
