// Package content provides content-addressed blob storage: the identifier is
// derived from the bytes, so storing identical bytes yields the same id.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get for an unknown content id.
var ErrNotFound = errors.New("content not found")

// Store is the content store contract. Put is durable once it returns and
// idempotent for identical bytes. Pin retains the content against garbage
// collection; stores without GC may treat it as a no-op for known ids.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Pin(ctx context.Context, id string) error
}

// MemoryStore keeps blobs in a map keyed by their SHA-256. Tests and local
// development only.
type MemoryStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	pinned map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs:  make(map[string][]byte),
		pinned: make(map[string]bool),
	}
}

// ContentID returns the hex SHA-256 of data, the id scheme shared by the
// memory and Redis stores.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (m *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := ContentID(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		m.blobs[id] = cp
	}
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryStore) Pin(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return ErrNotFound
	}
	m.pinned[id] = true
	return nil
}

// Pinned reports whether id has been pinned. Tests only.
func (m *MemoryStore) Pinned(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinned[id]
}
