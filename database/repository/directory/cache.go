package directoryRepo

import (
	"context"
	"encoding/json"
	"time"

	"servicehub/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	serviceKeyPrefix = "directory:service:"
	orgKeyPrefix     = "directory:org:"
)

// CachedDirectory fronts another Directory with a Redis read-through cache.
// Cache failures fall back to the underlying directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedDirectory) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	if c.get(ctx, serviceKeyPrefix+id, &s) {
		return &s, nil
	}
	out, err := c.next.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, serviceKeyPrefix+id, out)
	return out, nil
}

func (c *CachedDirectory) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var o models.Organization
	if c.get(ctx, orgKeyPrefix+id, &o) {
		return &o, nil
	}
	out, err := c.next.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, orgKeyPrefix+id, out)
	return out, nil
}

// Invalidate drops cached entries for a service and its organization.
func (c *CachedDirectory) Invalidate(ctx context.Context, serviceID, organizationID string) error {
	return c.client.Del(ctx, serviceKeyPrefix+serviceID, orgKeyPrefix+organizationID).Err()
}

func (c *CachedDirectory) get(ctx context.Context, key string, out interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("Directory cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Discarding corrupt directory cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedDirectory) set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Directory cache write failed", zap.String("key", key), zap.Error(err))
	}
}
