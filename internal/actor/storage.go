package actor

import "sync"

// Storage is durable key-value storage scoped to a single task. Writes must
// be visible to subsequent reads from the same actor (read-your-writes).
type Storage interface {
	// Put durably records value under key.
	Put(key string, value []byte) error
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
}

// StoreProvider opens the storage scoped to one task. The same taskID must
// always yield storage backed by the same underlying state.
type StoreProvider interface {
	OpenStore(taskID string) (Storage, error)
}

// MemoryStore is an in-process Storage, used by tests and one-shot CLI runs
// where durability across restarts is not needed.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Put records value under key.
func (m *MemoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

// Get returns the value for key and whether it exists.
func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// MemoryProvider hands out per-task MemoryStores, stable per taskID.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: make(map[string]*MemoryStore)}
}

// OpenStore returns the store for taskID, creating it on first use.
func (p *MemoryProvider) OpenStore(taskID string) (Storage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	store, ok := p.stores[taskID]
	if !ok {
		store = NewMemoryStore()
		p.stores[taskID] = store
	}
	return store, nil
}

var (
	_ Storage       = (*MemoryStore)(nil)
	_ StoreProvider = (*MemoryProvider)(nil)
)
