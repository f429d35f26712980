package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
)

const keyList = "company:list:"

// CompanyCache caches per-user company lists in Redis.
type CompanyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCompanyCache returns a new CompanyCache.
func NewCompanyCache(rdb *redis.Client, ttl time.Duration) *CompanyCache {
	return &CompanyCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for a user or nil if miss.
func (c *CompanyCache) GetList(ctx context.Context, userID int64) ([]dom.Company, error) {
	b, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Company
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the user's list in cache.
func (c *CompanyCache) SetList(ctx context.Context, userID int64, list []dom.Company) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID), b, c.ttl).Err()
}

// Invalidate drops the user's cached list (on create/delete).
func (c *CompanyCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, listKey(userID)).Err()
}

func listKey(userID int64) string {
	return keyList + strconv.FormatInt(userID, 10)
}
