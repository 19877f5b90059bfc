package config

import (
	"strings"
	"time"

	gconfig "github.com/Laisky/go-config/v2"
)

const (
	// MinRevalidate is the floor applied to the posts cache TTL.
	MinRevalidate = 60 * time.Second
	// DefaultPageSize is used when settings.posts.page_size is unset or invalid.
	DefaultPageSize = 10
	// DefaultNotionAPIBaseURL is the public notion web api endpoint.
	DefaultNotionAPIBaseURL = "https://www.notion.so/api/v3"
	// DefaultNotionTimeout bounds a single notion api call.
	DefaultNotionTimeout = 20 * time.Second

	// LikesModeFull verifies like membership on the server.
	LikesModeFull = "full"
	// LikesModeLite trusts the state the client claims.
	LikesModeLite = "lite"
)

// Site describes the public identity of the blog.
type Site struct {
	Title       string
	Description string
	// Link is the absolute base url, without trailing slash.
	Link       string
	Lang       string
	Author     string
	OGImageURL string
}

// Notion locates the content source.
type Notion struct {
	PageID     string
	APIBaseURL string
	Timeout    time.Duration
}

// Posts configures the post cache and the feed.
type Posts struct {
	Revalidate time.Duration
	PageSize   int
}

// Redis configures the shared cache store. An empty Addr and URL means
// no store is configured.
type Redis struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// Configured reports whether any redis endpoint is set.
func (r Redis) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Addr) != ""
}

// Engagement configures likes and comments.
type Engagement struct {
	LikesMode string
	// Production makes a missing cache store a hard unavailability
	// for engagement writes instead of using the in-process fallback.
	Production bool
}

// Web configures the http server.
type Web struct {
	CORSHosts      []string
	TrustedProxies []string
}

// Settings is the typed view of the loaded configuration.
type Settings struct {
	Debug      bool
	Site       Site
	Notion     Notion
	Posts      Posts
	Redis      Redis
	Engagement Engagement
	Web        Web
}

// Load reads Settings from gconfig.Shared and applies defaults.
func Load() Settings {
	c := gconfig.Shared
	s := Settings{
		Debug: c.GetBool("debug"),
		Site: Site{
			Title:       c.GetString("settings.site.title"),
			Description: c.GetString("settings.site.description"),
			Link:        c.GetString("settings.site.link"),
			Lang:        c.GetString("settings.site.lang"),
			Author:      c.GetString("settings.site.author"),
			OGImageURL:  c.GetString("settings.site.og_image_url"),
		},
		Notion: Notion{
			PageID:     c.GetString("settings.notion.page_id"),
			APIBaseURL: c.GetString("settings.notion.api_base_url"),
			Timeout:    time.Duration(c.GetInt("settings.notion.timeout_sec")) * time.Second,
		},
		Posts: Posts{
			Revalidate: time.Duration(c.GetInt("settings.posts.revalidate_sec")) * time.Second,
			PageSize:   c.GetInt("settings.posts.page_size"),
		},
		Redis: Redis{
			URL:      c.GetString("settings.db.redis.url"),
			Addr:     c.GetString("settings.db.redis.addr"),
			Password: c.GetString("settings.db.redis.password"),
			DB:       c.GetInt("settings.db.redis.db"),
		},
		Engagement: Engagement{
			LikesMode:  c.GetString("settings.engagement.likes_mode"),
			Production: !c.GetBool("debug"),
		},
		Web: Web{
			CORSHosts:      c.GetStringSlice("settings.web.cors_hosts"),
			TrustedProxies: c.GetStringSlice("settings.web.trusted_proxies"),
		},
	}
	if c.Get("settings.engagement.production") != nil {
		s.Engagement.Production = c.GetBool("settings.engagement.production")
	}

	return s.Normalize()
}

// Normalize fills defaults and enforces floors, returning the adjusted copy.
func (s Settings) Normalize() Settings {
	s.Site.Link = strings.TrimRight(strings.TrimSpace(s.Site.Link), "/")
	s.Site.OGImageURL = strings.TrimRight(strings.TrimSpace(s.Site.OGImageURL), "/")
	if s.Site.Lang == "" {
		s.Site.Lang = "en-US"
	}

	s.Notion.PageID = strings.TrimSpace(s.Notion.PageID)
	s.Notion.APIBaseURL = strings.TrimRight(strings.TrimSpace(s.Notion.APIBaseURL), "/")
	if s.Notion.APIBaseURL == "" {
		s.Notion.APIBaseURL = DefaultNotionAPIBaseURL
	}
	if s.Notion.Timeout <= 0 {
		s.Notion.Timeout = DefaultNotionTimeout
	}

	s.Posts.Revalidate = RevalidateTTL(s.Posts.Revalidate)
	if s.Posts.PageSize <= 0 {
		s.Posts.PageSize = DefaultPageSize
	}

	switch strings.ToLower(strings.TrimSpace(s.Engagement.LikesMode)) {
	case LikesModeLite:
		s.Engagement.LikesMode = LikesModeLite
	default:
		s.Engagement.LikesMode = LikesModeFull
	}

	return s
}

// RevalidateTTL floors the configured TTL at MinRevalidate.
func RevalidateTTL(configured time.Duration) time.Duration {
	if configured < MinRevalidate {
		return MinRevalidate
	}
	return configured
}
