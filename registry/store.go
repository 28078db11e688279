package registry

import "sync"

// MemStore is the in-process Store used by tests and ephemeral deployments.
type MemStore struct {
	mu   sync.RWMutex
	recs map[[32]byte]Record
}

func NewMemStore() *MemStore {
	return &MemStore{recs: make(map[[32]byte]Record)}
}

func (me *MemStore) Put(hash [32]byte, rec Record) error {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.recs[hash] = rec
	return nil
}

func (me *MemStore) Get(hash [32]byte) (Record, bool, error) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	rec, ok := me.recs[hash]
	return rec, ok, nil
}
