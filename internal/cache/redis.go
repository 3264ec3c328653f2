package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a read-through stats cache. Every stored key is also added to the
// index set of its team-season so Invalidate can delete them in one pass.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis parses url, connects and pings the server.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

// Ping reports whether Redis is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) Get(ctx context.Context, key Key, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Stale shape from an older build; treat as a miss and let Set overwrite it.
		return false, nil
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	k := key.String()
	idx := indexKey(key.TeamID, key.Season)
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, k, data, c.ttl)
	pipe.SAdd(ctx, idx, k)
	pipe.Expire(ctx, idx, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Redis) Invalidate(ctx context.Context, teamID, season string) error {
	idxKeys := []string{indexKey(teamID, season)}
	if season != "" {
		idxKeys = append(idxKeys, indexKey(teamID, ""))
	}
	for _, idx := range idxKeys {
		members, err := c.rdb.SMembers(ctx, idx).Result()
		if err != nil {
			return err
		}
		if err := c.rdb.Del(ctx, append(members, idx)...).Err(); err != nil {
			return err
		}
	}
	return nil
}

var _ StatsCache = (*Redis)(nil)
