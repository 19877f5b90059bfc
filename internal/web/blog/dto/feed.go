// Package dto holds the request and response shapes of the blog api.
package dto

import (
	"time"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// AllCategories disables category filtering.
const AllCategories = "📂 All"

// TagMode selects how requested tags combine.
type TagMode string

const (
	// TagModeAnd requires every requested tag.
	TagModeAnd TagMode = "and"
	// TagModeOr requires at least one requested tag.
	TagModeOr TagMode = "or"
)

// Order is the feed sort direction.
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// Visibility selects which statuses are eligible.
type Visibility int

const (
	// VisibilityList admits Public posts.
	VisibilityList Visibility = iota
	// VisibilityDetail admits Public and PublicOnDetail posts.
	VisibilityDetail
)

// FeedQuery describes one view over the post list.
type FeedQuery struct {
	// Text case and whitespace insensitive substring over title, summary and tags
	Text     string
	Tags     []string
	TagMode  TagMode
	Category string
	Order    Order
	PageSize int
	// Page 1-based, clamped into [1, TotalPages]
	Page       int
	Visibility Visibility
	// Types restricts post types when non-empty
	Types []string
}

// FeedPage is the visible slice of a feed plus pagination metadata.
type FeedPage struct {
	Items       []*model.Post `json:"items"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	TotalItems  int           `json:"totalItems"`
}

// PostItem is the public projection of a post.
type PostItem struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary,omitempty"`
	Type        []string        `json:"type,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Category    string          `json:"category,omitempty"`
	Date        *model.PostDate `json:"date,omitempty"`
	CreatedTime time.Time       `json:"createdTime"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	FullWidth   bool            `json:"fullWidth"`
	URL         string          `json:"url"`
}

// TagCount is a tag and the number of posts carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Meta is the SEO metadata of a page.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
	Date        string `json:"date,omitempty"`
}

// FeedResponse is returned by the feed endpoint.
type FeedResponse struct {
	Items       []*PostItem `json:"items"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	TotalItems  int         `json:"totalItems"`
	AllTags     []string    `json:"allTags"`
	Meta        *Meta       `json:"meta"`
}

// PostResponse is returned by the detail endpoint.
type PostResponse struct {
	Post *PostItem `json:"post"`
	Meta *Meta     `json:"meta"`
}
