// Package dao contains all the data access object used in the application.
package dao

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/db/kv"
	"github.com/Laisky/notion-blog/library/log"
)

// Blog dao type
type Blog struct {
	logger     logSDK.Logger
	resolver   *kv.Resolver
	fallback   kv.Interface
	production bool
}

// Option configures a Blog dao.
type Option func(*Blog)

// WithFallback sets the in-process store used for engagement state
// when the shared store is unavailable outside production.
func WithFallback(store kv.Interface) Option {
	return func(d *Blog) {
		if store != nil {
			d.fallback = store
		}
	}
}

// New create new dao.
// In production an unavailable shared store fails engagement writes
// instead of using the in-process fallback.
func New(logger logSDK.Logger, resolver *kv.Resolver, production bool, opts ...Option) *Blog {
	if logger == nil {
		logger = log.Logger.Named("blog_dao")
	}
	if resolver == nil {
		resolver = kv.NewResolver(nil, logger)
	}

	d := &Blog{
		logger:     logger,
		resolver:   resolver,
		fallback:   kv.NewMemory(),
		production: production,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Production reports whether the dao runs in production mode.
func (d *Blog) Production() bool {
	return d.production
}

// shared returns the shared store, if connected.
func (d *Blog) shared(ctx context.Context) (kv.Interface, bool) {
	return d.resolver.Backend(ctx).Store()
}

// engagement returns the store engagement state lives in.
func (d *Blog) engagement(ctx context.Context) (kv.Interface, error) {
	backend := d.resolver.Backend(ctx)
	if store, ok := backend.Store(); ok {
		return store, nil
	}
	if d.production {
		return nil, errors.Wrap(model.ErrStoreUnavailable, backend.Reason())
	}

	d.logger.Debug("use in-process engagement store", zap.String("reason", backend.Reason()))
	return d.fallback, nil
}

// EngagementAvailable returns model.ErrStoreUnavailable when engagement
// writes cannot be served.
func (d *Blog) EngagementAvailable(ctx context.Context) error {
	_, err := d.engagement(ctx)
	return err
}
