package service

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/gorilla/feeds"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// RSS renders an RSS 2.0 feed of the public posts.
// Item descriptions are the post summaries rendered from markdown.
func (s *Blog) RSS(ctx context.Context) (string, error) {
	posts, err := s.GetPosts(ctx)
	if err != nil {
		return "", err
	}

	site := s.settings.Site
	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: site.Link},
		Description: site.Description,
		Author:      &feeds.Author{Name: site.Author},
		Created:     s.clock(),
	}
	for _, p := range posts {
		if p.Slug == "" || !p.HasStatus(model.StatusPublic) {
			continue
		}

		link := postURL(site.Link, p.Slug)
		item := &feeds.Item{
			Title:   p.Title,
			Link:    &feeds.Link{Href: link},
			Id:      link,
			Created: p.SortTime(),
			Author:  &feeds.Author{Name: site.Author},
		}
		if p.Summary != "" {
			item.Description = ParseMarkdown2HTML([]byte(p.Summary))
		}
		feed.Items = append(feed.Items, item)
	}

	out, err := feed.ToRss()
	if err != nil {
		return "", errors.Wrap(err, "render rss")
	}
	return out, nil
}
