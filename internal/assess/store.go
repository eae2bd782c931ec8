package assess

import "sync"

// Store persists per-user progress. Implementations must be safe for
// concurrent use; the Service additionally serializes mutations per user.
type Store interface {
	// Load returns the stored progress for a user, or ok=false when the
	// user has none yet.
	Load(userID string) (*Progress, bool, error)
	// Save writes the user's progress.
	Save(userID string, p *Progress) error
}

// MemoryStore is the default in-process Store. State lives for the process
// lifetime only.
type MemoryStore struct {
	mu       sync.RWMutex
	progress map[string]*Progress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{progress: map[string]*Progress{}}
}

func (m *MemoryStore) Load(userID string) (*Progress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[userID]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (m *MemoryStore) Save(userID string, p *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[userID] = p.Clone()
	return nil
}
