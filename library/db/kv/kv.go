// Package kv defines the cache store contract shared by the post cache
// and the engagement store, plus an in-process implementation.
package kv

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
)

var (
	_ Interface = new(Memory)

	// ErrNotInteger is returned when a counter key holds a non-integer value.
	ErrNotInteger = errors.New("value is not an integer")
	// ErrWrongType is returned when a key is used with an operation of another kind.
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")
)

// Interface is the set of atomic single-key operations the site relies on.
//
// Implementations only guarantee atomicity per call. Multi-step flows built
// on top of them are read-then-write and may interleave across instances.
type Interface interface {
	// Get returns the raw value of key, found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key, ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	// RPush appends value to the tail of the list at key.
	RPush(ctx context.Context, key string, value []byte) error
	// LRange returns list elements between start and stop inclusive,
	// negative indexes count from the tail.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}
