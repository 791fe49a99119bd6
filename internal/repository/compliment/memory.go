package compliment

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/xpanvictor/aigreeter/internal/domains/compliment"
)

var _ compliment.Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps compliments in process. A background janitor evicts
// expired entries whether or not they are ever read again. Suitable for a
// single instance only.
type MemoryRepository struct {
	cache     *ttlcache.Cache[string, string]
	prefix    string
	closeOnce sync.Once
}

// NewMemoryRepository starts the eviction loop; Close stops it.
func NewMemoryRepository(prefix string) *MemoryRepository {
	cache := ttlcache.New[string, string](
		// reads must not extend a compliment's lifetime
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()
	return &MemoryRepository{cache: cache, prefix: prefix}
}

// Put implements compliment.Repository.
func (m *MemoryRepository) Put(_ context.Context, sessionID, text string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.cache.Set(compliment.Key(m.prefix, sessionID), text, ttl)
	return nil
}

// Get implements compliment.Repository.
func (m *MemoryRepository) Get(_ context.Context, sessionID string) (string, bool, error) {
	item := m.cache.Get(compliment.Key(m.prefix, sessionID))
	if item == nil || item.IsExpired() {
		return "", false, nil
	}
	return item.Value(), true, nil
}

// Delete implements compliment.Repository.
func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete(compliment.Key(m.prefix, sessionID))
	return nil
}

// Close stops the eviction loop. Safe to call more than once.
func (m *MemoryRepository) Close() error {
	m.closeOnce.Do(m.cache.Stop)
	return nil
}
