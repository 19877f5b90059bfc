package service

import (
	"context"
	"slices"
	"sync"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/log"
)

// PostCache serves the post list from the shared store, a process-local
// mirror, or the content source, in that order.
//
// The mirror is populated on every shared hit and every remote fetch, and
// is never cleared; staleness is only checked when it is read.
type PostCache struct {
	logger logSDK.Logger
	dao    *dao.Blog
	client notion.Client
	rootID string
	ttl    time.Duration
	clock  Clock

	mu    sync.RWMutex
	local *model.CachedPosts

	fetching singleflight.Group
}

// NewPostCache creates a post cache for the collection at rootID.
// ttl is floored at config.MinRevalidate.
func NewPostCache(logger logSDK.Logger,
	dao *dao.Blog,
	client notion.Client,
	rootID string,
	ttl time.Duration,
	clock Clock) *PostCache {
	if logger == nil {
		logger = log.Logger.Named("post_cache")
	}
	if clock == nil {
		clock = time.Now
	}

	return &PostCache{
		logger: logger,
		dao:    dao,
		client: client,
		rootID: rootID,
		ttl:    config.RevalidateTTL(ttl),
		clock:  clock,
	}
}

// TTL returns the effective cache lifetime.
func (c *PostCache) TTL() time.Duration {
	return c.ttl
}

// GetPosts returns every post sorted by descending sort time.
// Only a content source failure is returned as an error.
func (c *PostCache) GetPosts(ctx context.Context) ([]*model.Post, error) {
	if posts, ok := c.loadShared(ctx); ok {
		c.storeLocal(posts)
		return model.ClonePosts(posts), nil
	}

	if posts, ok := c.loadLocal(); ok {
		return model.ClonePosts(posts), nil
	}

	// waiters share one fetch, detached from the first caller's cancellation
	v, err, _ := c.fetching.Do(c.rootID, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}

	return model.ClonePosts(v.([]*model.Post)), nil
}

func (c *PostCache) loadShared(ctx context.Context) ([]*model.Post, bool) {
	posts, found, err := c.dao.GetPostsSnapshot(ctx)
	switch {
	case errors.Is(err, dao.ErrSharedStoreDisabled):
		return nil, false
	case err != nil:
		c.logger.Warn("read shared posts, treat as miss", zap.Error(err))
		return nil, false
	}

	return posts, found
}

func (c *PostCache) loadLocal() ([]*model.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.local.FreshAt(c.clock(), c.ttl) {
		return nil, false
	}
	return c.local.Posts, true
}

func (c *PostCache) storeLocal(posts []*model.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.local = &model.CachedPosts{
		Posts:     posts,
		FetchedAt: c.clock(),
	}
}

// refresh fetches and normalizes the collection, then writes it through
// to both tiers. A failed shared write does not fail the read.
func (c *PostCache) refresh(ctx context.Context) ([]*model.Post, error) {
	startAt := time.Now()
	tree, err := c.client.FetchPageTree(ctx, c.rootID)
	if err != nil {
		c.logger.Error("fetch posts from content source", zap.Error(err))
		return nil, errors.Wrap(err, "fetch page tree")
	}

	posts, isCollection := NormalizePosts(c.logger, tree, c.rootID)
	SortPosts(posts)

	c.storeLocal(posts)
	if err = c.dao.SetPostsSnapshot(ctx, posts, c.ttl); err != nil &&
		!errors.Is(err, dao.ErrSharedStoreDisabled) {
		c.logger.Warn("write shared posts", zap.Error(err))
	}

	c.logger.Info("refreshed posts",
		zap.Int("n", len(posts)),
		zap.Bool("collection", isCollection),
		zap.Duration("cost", time.Since(startAt)))
	return posts, nil
}

// SortPosts stably sorts posts by descending sort time.
func SortPosts(posts []*model.Post) {
	slices.SortStableFunc(posts, func(a, b *model.Post) int {
		return b.SortTime().Compare(a.SortTime())
	})
}
