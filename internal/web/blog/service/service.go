// Package service implements the blog core: post normalization and caching,
// the feed engine, engagement (likes and comments) and SEO documents.
package service

import (
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/log"
)

// Clock returns the current time.
type Clock func() time.Time

// Blog is the blog service.
type Blog struct {
	logger   logSDK.Logger
	dao      *dao.Blog
	settings config.Settings
	clock    Clock
	posts    *PostCache
}

// Option configures the blog service.
type Option func(*Blog)

// WithClock overrides the clock used for ttl checks and comment dates.
func WithClock(clock Clock) Option {
	return func(b *Blog) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// New new blog service.
// It accepts the dao, the notion client and the normalized settings.
func New(logger logSDK.Logger,
	dao *dao.Blog,
	client notion.Client,
	settings config.Settings,
	opts ...Option) *Blog {
	if logger == nil {
		logger = log.Logger.Named("blog_svc")
	}

	b := &Blog{
		logger:   logger,
		dao:      dao,
		settings: settings,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.posts = NewPostCache(logger.Named("post_cache"), dao, client,
		settings.Notion.PageID, settings.Posts.Revalidate, b.clock)
	return b
}

// Settings returns the settings the service runs with.
func (s *Blog) Settings() config.Settings {
	return s.settings
}

// PostCache returns the post cache manager.
func (s *Blog) PostCache() *PostCache {
	return s.posts
}
