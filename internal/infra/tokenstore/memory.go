package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Used in tests and for local runs that
// have no database configured.
type Memory struct {
	mu    sync.RWMutex
	token *Token
}

// NewMemory creates an empty in-memory token store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored token, or (nil, nil) when nothing is stored.
func (m *Memory) Get(_ context.Context) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return nil, nil
	}
	t := *m.token
	return &t, nil
}

// Set overwrites the stored token.
func (m *Memory) Set(_ context.Context, token Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = &token
	return nil
}
