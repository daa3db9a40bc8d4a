package utils

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventsList drops every cached list page.
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	iter := ci.rdb.Scan(ctx, 0, "cache:events:list:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEventItem drops cached single-event responses. Item keys embed a
// sha1 of the id, so this conservatively clears the whole item namespace.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id string) {
	iter := ci.rdb.Scan(ctx, 0, "cache:events:item:*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if strings.HasPrefix(k, "cache:events:item:") {
			_ = ci.rdb.Del(ctx, k).Err()
		}
	}
}
