package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CachedAdminDirectory кэширует список администраторов: рассылка NotifyAdmins
// не должна ходить в БД на каждое событие.
type CachedAdminDirectory struct {
	source AdminDirectory
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	ids       []uuid.UUID
	expiresAt time.Time
}

// NewCachedAdminDirectory создаёт кэш поверх source.
func NewCachedAdminDirectory(source AdminDirectory, ttl time.Duration) *CachedAdminDirectory {
	return &CachedAdminDirectory{source: source, ttl: ttl, now: time.Now}
}

// ListAdminIDs возвращает закэшированный список или перечитывает его после истечения TTL.
func (c *CachedAdminDirectory) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	c.mu.RLock()
	if c.ids != nil && c.now().Before(c.expiresAt) {
		ids := slices.Clone(c.ids)
		c.mu.RUnlock()
		return ids, nil
	}
	c.mu.RUnlock()

	ids, err := c.source.ListAdminIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	c.mu.Lock()
	c.ids = ids
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	return slices.Clone(ids), nil
}

// Invalidate сбрасывает кэш.
func (c *CachedAdminDirectory) Invalidate() {
	c.mu.Lock()
	c.ids = nil
	c.mu.Unlock()
}
