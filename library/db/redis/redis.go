// Package redis implements the shared cache store on top of go-redis.
package redis

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/db/kv"
)

var _ kv.Interface = new(DB)

// DB is a wrapper for go-redis
type DB struct {
	db redis.UniversalClient
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	return &DB{
		db: redis.NewClient(opt),
	}
}

// OptionsFromSettings builds client options from settings.db.redis.
// A url takes precedence over addr/password/db.
func OptionsFromSettings(cfg config.Redis) (*redis.Options, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		return opt, nil
	}
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is empty")
	}

	return &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// Connector returns a kv.Connector that dials and pings redis, or nil
// when no redis endpoint is configured.
func Connector(cfg config.Redis) kv.Connector {
	if !cfg.Configured() {
		return nil
	}

	return func(ctx context.Context) (kv.Interface, error) {
		opt, err := OptionsFromSettings(cfg)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		db := NewDB(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err = db.Ping(pingCtx); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "ping redis")
		}

		return db, nil
	}
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return errors.Wrap(db.db.Ping(ctx).Err(), "ping")
}

// Close closes the underlying client.
func (db *DB) Close() error {
	return db.db.Close()
}

// Get implements kv.Interface.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := db.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %q", key)
	}

	return v, true, nil
}

// Set implements kv.Interface.
func (db *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := db.db.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}

	return nil
}

// SetNX implements kv.Interface.
func (db *DB) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	ok, err := db.db.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "setnx %q", key)
	}

	return ok, nil
}

// Incr implements kv.Interface.
func (db *DB) Incr(ctx context.Context, key string) (int64, error) {
	n, err := db.db.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "incr %q", key)
	}

	return n, nil
}

// Decr implements kv.Interface.
func (db *DB) Decr(ctx context.Context, key string) (int64, error) {
	n, err := db.db.Decr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "decr %q", key)
	}

	return n, nil
}

// SAdd implements kv.Interface.
func (db *DB) SAdd(ctx context.Context, key, member string) error {
	return errors.Wrapf(db.db.SAdd(ctx, key, member).Err(), "sadd %q", key)
}

// SRem implements kv.Interface.
func (db *DB) SRem(ctx context.Context, key, member string) error {
	return errors.Wrapf(db.db.SRem(ctx, key, member).Err(), "srem %q", key)
}

// SIsMember implements kv.Interface.
func (db *DB) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := db.db.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, errors.Wrapf(err, "sismember %q", key)
	}

	return ok, nil
}

// RPush implements kv.Interface.
func (db *DB) RPush(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(db.db.RPush(ctx, key, value).Err(), "rpush %q", key)
}

// LRange implements kv.Interface.
func (db *DB) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	items, err := db.db.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "lrange %q", key)
	}

	out := make([][]byte, 0, len(items))
	for _, item := range items {
		out = append(out, []byte(item))
	}
	return out, nil
}
