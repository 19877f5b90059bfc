package kv

import (
	"context"
	"sync"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/library/log"
)

// Backend is either Connected to a shared store or Unavailable.
type Backend struct {
	store  Interface
	reason string
}

// Connected wraps a reachable shared store.
func Connected(store Interface) Backend {
	if store == nil {
		return Unavailable("nil store")
	}
	return Backend{store: store}
}

// Unavailable marks the shared store as absent for the given reason.
func Unavailable(reason string) Backend {
	return Backend{reason: reason}
}

// Store returns the shared store and whether it is connected.
func (b Backend) Store() (Interface, bool) {
	return b.store, b.store != nil
}

// IsConnected reports whether a shared store is available.
func (b Backend) IsConnected() bool {
	return b.store != nil
}

// Reason explains why the backend is unavailable, empty when connected.
func (b Backend) Reason() string {
	return b.reason
}

// Connector dials the shared store. A nil Connector means not configured.
type Connector func(ctx context.Context) (Interface, error)

// Resolver resolves the Backend once and caches it for the process lifetime.
type Resolver struct {
	once    sync.Once
	connect Connector
	logger  logSDK.Logger
	backend Backend
}

// NewResolver creates a Resolver around connect.
func NewResolver(connect Connector, logger logSDK.Logger) *Resolver {
	if logger == nil {
		logger = log.Logger.Named("kv_resolver")
	}
	return &Resolver{connect: connect, logger: logger}
}

// Backend returns the resolved backend, dialing on the first call only.
func (r *Resolver) Backend(ctx context.Context) Backend {
	r.once.Do(func() {
		if r.connect == nil {
			r.backend = Unavailable("cache store not configured")
			r.logger.Info("cache store not configured, shared cache disabled")
			return
		}

		store, err := r.connect(ctx)
		if err != nil {
			r.backend = Unavailable(err.Error())
			r.logger.Warn("cache store unreachable, shared cache disabled", zap.Error(err))
			return
		}

		r.backend = Connected(store)
		r.logger.Info("cache store connected")
	})

	return r.backend
}
