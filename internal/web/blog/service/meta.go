package service

import (
	"net/url"
	"time"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

const metaTypeWebsite = "Website"

// HomeMeta returns the metadata of the home feed.
func (s *Blog) HomeMeta() *dto.Meta {
	site := s.settings.Site
	return &dto.Meta{
		Title:       site.Title,
		Description: site.Description,
		Type:        metaTypeWebsite,
		URL:         site.Link,
	}
}

// TagMeta returns the metadata of a tag feed.
func (s *Blog) TagMeta(tag string) *dto.Meta {
	m := s.HomeMeta()
	m.URL = s.settings.Site.Link + "/tag/" + url.PathEscape(tag)
	return m
}

// CategoryMeta returns the metadata of a category feed.
func (s *Blog) CategoryMeta(category string) *dto.Meta {
	m := s.HomeMeta()
	m.URL = s.settings.Site.Link + "/category/" + url.PathEscape(category)
	return m
}

// PostMeta returns the metadata of a post detail page.
// The image falls back to the generated og image of the title.
func (s *Blog) PostMeta(p *model.Post) *dto.Meta {
	site := s.settings.Site
	image := p.Thumbnail
	if image == "" && site.OGImageURL != "" {
		image = site.OGImageURL + "/" + url.PathEscape(p.Title) + ".png"
	}

	typ := p.PrimaryType()
	if typ == "" {
		typ = model.TypePost
	}

	return &dto.Meta{
		Title:       p.Title,
		Description: p.Summary,
		Type:        typ,
		URL:         postURL(site.Link, p.Slug),
		Image:       ensureAbsoluteURL(site.Link, image),
		Date:        p.SortTime().UTC().Format(time.RFC3339),
	}
}
