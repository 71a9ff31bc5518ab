package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/pressdesk/internal/models"
)

type memoryEntry struct {
	session models.Session
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]memoryEntry
	now    func() time.Time
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryStore) Save(ctx context.Context, id string, session *models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	entry := memoryEntry{session: *session}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}
	m.data[id] = entry
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	entry, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		delete(m.data, id)
		return nil, nil
	}
	s := entry.session
	return &s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = make(map[string]memoryEntry)
	return nil
}
