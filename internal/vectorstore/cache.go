package vectorstore

import (
	"sync"

	"go.uber.org/zap"
)

// Cache holds the most recently loaded snapshot so repeated queries
// against the same store path skip re-deserialization. It is an
// explicit object owned by the caller's session scope, not process-wide
// state; callers that need fresh data pass refresh=true.
//
// Concurrent writers to the same store path race: the last SaveFile
// wins, and a cached instance may serve records from before the race.
type Cache struct {
	mu     sync.Mutex
	path   string
	store  *SnapshotStore
	logger *zap.Logger
}

// NewCache creates an empty Cache. A nil logger falls back to a no-op
// logger.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{logger: logger}
}

// Get returns the snapshot store for path, loading it from disk when
// nothing is cached, the cached instance belongs to a different path,
// or refresh is set.
func (c *Cache) Get(path string, refresh bool) (*SnapshotStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil && c.path == path && !refresh {
		return c.store, nil
	}

	store, err := LoadFile(path, c.logger)
	if err != nil {
		return nil, err
	}
	c.path = path
	c.store = store
	return store, nil
}

// Invalidate drops the cached instance.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = ""
	c.store = nil
}
