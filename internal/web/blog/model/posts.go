// Package model contains all the models used by the blog.
package model

import (
	"slices"
	"time"
)

// Post status and type values the site acts on.
const (
	StatusPublic         = "Public"
	StatusPublicOnDetail = "PublicOnDetail"

	TypePost  = "Post"
	TypePage  = "Page"
	TypePaper = "Paper"
)

// dateLayout is the layout of PostDate.StartDate.
const dateLayout = "2006-01-02"

// Post is a read-only projection of one page of the content collection.
type Post struct {
	// ID opaque identifier assigned by the content source
	ID string `json:"id"`
	// Slug url-safe identifier, unique among public posts
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	// Type first element is authoritative
	Type []string `json:"type,omitempty"`
	// Status workflow states of the post
	Status   []string  `json:"status,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Category string    `json:"category,omitempty"`
	Date     *PostDate `json:"date,omitempty"`
	// CreatedTime creation time of the page, always present
	CreatedTime time.Time `json:"createdTime"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	FullWidth   bool      `json:"fullWidth"`
	// Extra holds schema properties the blog does not model explicitly
	Extra map[string]string `json:"extra,omitempty"`
}

// PostDate is the structured date property of a post.
type PostDate struct {
	StartDate string `json:"start_date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
}

// SortTime returns date.start_date when it parses, else CreatedTime.
func (p *Post) SortTime() time.Time {
	if p.Date != nil && p.Date.StartDate != "" {
		if t, err := time.Parse(dateLayout, p.Date.StartDate); err == nil {
			return t
		}
	}

	return p.CreatedTime
}

// HasStatus reports whether the post carries status s.
func (p *Post) HasStatus(s string) bool {
	return slices.Contains(p.Status, s)
}

// HasTag reports whether the post carries tag.
func (p *Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// PrimaryType returns the authoritative type, empty when unset.
func (p *Post) PrimaryType() string {
	if len(p.Type) == 0 {
		return ""
	}
	return p.Type[0]
}

// SetExtra records an unmodeled property, ignoring empty values.
func (p *Post) SetExtra(name, value string) {
	if name == "" || value == "" {
		return
	}
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}
	p.Extra[name] = value
}

// Clone returns a deep copy of p.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}

	c := *p
	c.Type = slices.Clone(p.Type)
	c.Status = slices.Clone(p.Status)
	c.Tags = slices.Clone(p.Tags)
	if p.Date != nil {
		d := *p.Date
		c.Date = &d
	}
	if p.Extra != nil {
		c.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}

	return &c
}

// ClonePosts deep copies a post list, keeping a non-nil result for non-nil input.
func ClonePosts(posts []*Post) []*Post {
	if posts == nil {
		return nil
	}

	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Clone())
	}
	return out
}

// CachedPosts is a snapshot of the post list.
type CachedPosts struct {
	Posts     []*Post   `json:"posts"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// FreshAt reports whether the snapshot is still within ttl at now.
func (c *CachedPosts) FreshAt(now time.Time, ttl time.Duration) bool {
	return c != nil && now.Sub(c.FetchedAt) < ttl
}
