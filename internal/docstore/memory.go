package docstore

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore keeps the document in process memory. It is meant for tests and
// single-instance development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	content []byte
	exists  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Exists(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.exists, nil
}

func (s *MemoryStore) Download(context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.exists {
		return nil, errors.New("document does not exist")
	}

	out := make([]byte, len(s.content))
	copy(out, s.content)
	return out, nil
}

func (s *MemoryStore) Upload(_ context.Context, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = make([]byte, len(content))
	copy(s.content, content)
	s.exists = true

	return nil
}
