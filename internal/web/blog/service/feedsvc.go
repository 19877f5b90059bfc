package service

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// GetPosts returns every post from the post cache.
func (s *Blog) GetPosts(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.posts.GetPosts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get posts")
	}
	return posts, nil
}

// ListFeed returns one page of the feed described by q.
// An empty page size uses the configured one.
func (s *Blog) ListFeed(ctx context.Context, q dto.FeedQuery) (*dto.FeedResponse, error) {
	text, tags, err := sanitizeFeedQuery(q.Text, q.Tags)
	if err != nil {
		return nil, err
	}
	q.Text, q.Tags = text, tags
	if q.PageSize <= 0 {
		q.PageSize = s.settings.Posts.PageSize
	}
	if q.TagMode != dto.TagModeOr {
		q.TagMode = dto.TagModeAnd
	}
	if q.Order != dto.OrderAsc {
		q.Order = dto.OrderDesc
	}

	posts, err := s.GetPosts(ctx)
	if err != nil {
		return nil, err
	}

	page := FilterFeed(posts, q)
	items, err := s.toPostItems(page.Items)
	if err != nil {
		return nil, err
	}

	meta := s.HomeMeta()
	switch {
	case len(q.Tags) == 1:
		meta = s.TagMeta(q.Tags[0])
	case q.Category != "" && q.Category != dto.AllCategories:
		meta = s.CategoryMeta(q.Category)
	}

	return &dto.FeedResponse{
		Items:       items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		TotalItems:  page.TotalItems,
		AllTags:     AllTags(publicPosts(posts)),
		Meta:        meta,
	}, nil
}

// GetPost returns the detail projection and metadata of slug.
func (s *Blog) GetPost(ctx context.Context, slug string) (*dto.PostResponse, error) {
	posts, err := s.GetPosts(ctx)
	if err != nil {
		return nil, err
	}

	post, err := FindPostBySlug(posts, slug)
	if err != nil {
		return nil, err
	}

	item, err := s.toPostItem(post)
	if err != nil {
		return nil, err
	}
	return &dto.PostResponse{Post: item, Meta: s.PostMeta(post)}, nil
}

// ListTopTags returns the most used tags of public posts.
func (s *Blog) ListTopTags(ctx context.Context, limit int) ([]dto.TagCount, error) {
	if limit <= 0 || limit > DefaultTopTags {
		limit = DefaultTopTags
	}

	posts, err := s.GetPosts(ctx)
	if err != nil {
		return nil, err
	}
	return TopTags(posts, limit), nil
}

// ListCategories returns the categories of public posts, most used first.
func (s *Blog) ListCategories(ctx context.Context) ([]dto.TagCount, error) {
	posts, err := s.GetPosts(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(posts), nil
}

func (s *Blog) toPostItem(p *model.Post) (*dto.PostItem, error) {
	item := new(dto.PostItem)
	if err := copier.Copy(item, p); err != nil {
		return nil, errors.Wrap(err, "copy post")
	}
	item.URL = postURL(s.settings.Site.Link, p.Slug)
	return item, nil
}

func (s *Blog) toPostItems(posts []*model.Post) ([]*dto.PostItem, error) {
	items := make([]*dto.PostItem, 0, len(posts))
	for _, p := range posts {
		item, err := s.toPostItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func publicPosts(posts []*model.Post) []*model.Post {
	out := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if p.HasStatus(model.StatusPublic) {
			out = append(out, p)
		}
	}
	return out
}
