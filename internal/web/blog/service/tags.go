package service

import (
	"slices"
	"strings"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// DefaultTopTags is the number of tags returned when no limit is given.
const DefaultTopTags = 50

// detailTypes are the post types a detail page can render.
var detailTypes = []string{model.TypePaper, model.TypePost, model.TypePage}

// AllTags returns every tag of posts once, in first-seen order.
func AllTags(posts []*model.Post) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	return tags
}

// TopTags counts tags over public posts and returns the limit most used,
// ties kept in first-seen order.
func TopTags(posts []*model.Post, limit int) []dto.TagCount {
	return countBy(posts, limit, func(p *model.Post) []string { return p.Tags })
}

// Categories counts categories over public posts, most used first.
func Categories(posts []*model.Post) []dto.TagCount {
	return countBy(posts, 0, func(p *model.Post) []string {
		if p.Category == "" {
			return nil
		}
		return []string{p.Category}
	})
}

func countBy(posts []*model.Post, limit int, keys func(*model.Post) []string) []dto.TagCount {
	index := make(map[string]int)
	counts := []dto.TagCount{}
	for _, p := range posts {
		if !p.HasStatus(model.StatusPublic) {
			continue
		}
		for _, k := range keys(p) {
			if i, ok := index[k]; ok {
				counts[i].Count++
				continue
			}
			index[k] = len(counts)
			counts = append(counts, dto.TagCount{Name: k, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b dto.TagCount) int {
		return b.Count - a.Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	return counts
}

// FindPostBySlug returns the post a detail page renders for slug.
// It returns model.ErrNotFound when no visible post matches.
func FindPostBySlug(posts []*model.Post, slug string) (*model.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.Wrap(model.ErrInvalidArgument, "slug is required")
	}

	for _, p := range posts {
		if p.Slug != slug || !visible(p, dto.VisibilityDetail) {
			continue
		}
		if !slices.Contains(detailTypes, p.PrimaryType()) {
			continue
		}
		return p, nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "post %q", slug)
}
