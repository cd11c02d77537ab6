package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a process-local Store. It backs tests and deployments that
// run a single instance without Redis; ownership does not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Get round-trips through JSON so callers see the same serialization
// behavior as the Redis store and never share a pointer with the map.
func (m *MemoryStore) Get(_ context.Context, conversationID string) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[conversationID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *MemoryStore) Put(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[sess.ConversationID] = data
	m.mu.Unlock()
	return nil
}
