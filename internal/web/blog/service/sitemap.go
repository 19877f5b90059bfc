package service

import (
	"context"
	"encoding/xml"
	"net/url"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap renders the sitemap of the public posts, the site root first.
// When the post list is unavailable it renders the root entry only.
func (s *Blog) Sitemap(ctx context.Context) ([]byte, error) {
	posts, err := s.GetPosts(ctx)
	if err != nil {
		s.logger.Warn("load posts for sitemap, render root only", zap.Error(err))
		posts = nil
	}

	return renderSitemap(s.settings.Site.Link, posts, s.clock())
}

func renderSitemap(link string, posts []*model.Post, now time.Time) ([]byte, error) {
	var visible []*model.Post
	for _, p := range posts {
		if p.Slug != "" && p.HasStatus(model.StatusPublic) {
			visible = append(visible, p)
		}
	}

	rootMod := now
	if len(visible) > 0 {
		rootMod = visible[0].SortTime()
	}

	set := sitemapURLSet{XMLNS: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        link,
		LastMod:    isoTime(rootMod),
		ChangeFreq: "daily",
		Priority:   "1.0",
	})
	for _, p := range visible {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        link + "/" + url.PathEscape(p.Slug),
			LastMod:    isoTime(p.SortTime()),
			ChangeFreq: "daily",
			Priority:   "0.7",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal sitemap")
	}
	return append([]byte(xml.Header), body...), nil
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
