package blobmock

import (
	"context"
	"io"
	"sync"
)

// Store is a function-backed blob.Store. Without PutFn it keeps objects in memory
// and returns "mem://<name>" URLs.
type Store struct {
	PutFn func(ctx context.Context, name, contentType string, body io.Reader) (string, error)

	mu      sync.Mutex
	Objects map[string][]byte
}

func (m *Store) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if m.PutFn != nil {
		return m.PutFn(ctx, name, contentType, body)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	m.Objects[name] = data
	return "mem://" + name, nil
}

// Len returns the number of stored objects.
func (m *Store) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
