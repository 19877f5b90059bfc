package kv

import (
	"context"
	"strconv"
	"sync"
	"time"

	errors "github.com/Laisky/errors/v2"
)

type entryKind int

const (
	kindString entryKind = iota
	kindSet
	kindList
)

type memoryEntry struct {
	kind     entryKind
	value    []byte
	set      map[string]struct{}
	list     [][]byte
	expireAt time.Time
}

// Memory is a process-local Interface. It is not shared across
// instances, so it is only correct for single-instance deployments.
type Memory struct {
	mu    sync.Mutex
	items map[string]*memoryEntry
	now   func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the clock used for ttl expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-process store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]*memoryEntry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// load returns the live entry for key, evicting it when expired. Caller holds mu.
func (m *Memory) load(key string) (*memoryEntry, bool) {
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		delete(m.items, key)
		return nil, false
	}

	return e, true
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// Get implements Interface.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		return nil, false, nil
	}
	if e.kind != kindString {
		return nil, false, errors.Wrapf(ErrWrongType, "get %q", key)
	}

	return append([]byte(nil), e.value...), true, nil
}

// Set implements Interface.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = &memoryEntry{
		kind:     kindString,
		value:    append([]byte(nil), value...),
		expireAt: m.expiry(ttl),
	}
	return nil
}

// SetNX implements Interface.
func (m *Memory) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.load(key); ok {
		return false, nil
	}
	m.items[key] = &memoryEntry{
		kind:     kindString,
		value:    append([]byte(nil), value...),
		expireAt: m.expiry(ttl),
	}
	return true, nil
}

func (m *Memory) addInt(key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		current int64
		expire  time.Time
	)
	if e, ok := m.load(key); ok {
		if e.kind != kindString {
			return 0, errors.Wrapf(ErrWrongType, "incr %q", key)
		}
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrNotInteger, "incr %q", key)
		}
		current, expire = n, e.expireAt
	}

	current += delta
	m.items[key] = &memoryEntry{
		kind:     kindString,
		value:    []byte(strconv.FormatInt(current, 10)),
		expireAt: expire,
	}
	return current, nil
}

// Incr implements Interface.
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	return m.addInt(key, 1)
}

// Decr implements Interface.
func (m *Memory) Decr(_ context.Context, key string) (int64, error) {
	return m.addInt(key, -1)
}

// SAdd implements Interface.
func (m *Memory) SAdd(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		e = &memoryEntry{kind: kindSet, set: make(map[string]struct{})}
		m.items[key] = e
	}
	if e.kind != kindSet {
		return errors.Wrapf(ErrWrongType, "sadd %q", key)
	}

	e.set[member] = struct{}{}
	return nil
}

// SRem implements Interface.
func (m *Memory) SRem(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		return nil
	}
	if e.kind != kindSet {
		return errors.Wrapf(ErrWrongType, "srem %q", key)
	}

	delete(e.set, member)
	if len(e.set) == 0 {
		delete(m.items, key)
	}
	return nil
}

// SIsMember implements Interface.
func (m *Memory) SIsMember(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		return false, nil
	}
	if e.kind != kindSet {
		return false, errors.Wrapf(ErrWrongType, "sismember %q", key)
	}

	_, ok = e.set[member]
	return ok, nil
}

// RPush implements Interface.
func (m *Memory) RPush(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		e = &memoryEntry{kind: kindList}
		m.items[key] = e
	}
	if e.kind != kindList {
		return errors.Wrapf(ErrWrongType, "rpush %q", key)
	}

	e.list = append(e.list, append([]byte(nil), value...))
	return nil
}

// LRange implements Interface.
func (m *Memory) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		return [][]byte{}, nil
	}
	if e.kind != kindList {
		return nil, errors.Wrapf(ErrWrongType, "lrange %q", key)
	}

	n := int64(len(e.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return [][]byte{}, nil
	}

	out := make([][]byte, 0, stop-start+1)
	for _, v := range e.list[start : stop+1] {
		out = append(out, append([]byte(nil), v...))
	}
	return out, nil
}
