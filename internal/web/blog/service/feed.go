package service

import (
	"slices"
	"strings"
	"unicode"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/config"
)

// FilterFeed filters, sorts and paginates posts for one view.
//
// Filters apply in order: visibility, type, text, tags, category. The
// result is stably sorted by descending sort time; ascending order is the
// reversal of that sequence, so ties come out in reverse source order.
// The requested page is clamped into [1, TotalPages].
func FilterFeed(posts []*model.Post, q dto.FeedQuery) *dto.FeedPage {
	needle := normalizeSearchText(q.Text)
	matched := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if !visible(p, q.Visibility) ||
			!matchesTypes(p, q.Types) ||
			!matchesText(p, needle) ||
			!matchesTags(p, q.Tags, q.TagMode) ||
			!matchesCategory(p, q.Category) {
			continue
		}
		matched = append(matched, p)
	}

	SortPosts(matched)
	if q.Order == dto.OrderAsc {
		slices.Reverse(matched)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}

	totalPages := max(1, (len(matched)+pageSize-1)/pageSize)
	page := min(max(q.Page, 1), totalPages)
	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))

	return &dto.FeedPage{
		Items:       matched[start:end],
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalItems:  len(matched),
	}
}

func visible(p *model.Post, v dto.Visibility) bool {
	if p.HasStatus(model.StatusPublic) {
		return true
	}
	return v == dto.VisibilityDetail && p.HasStatus(model.StatusPublicOnDetail)
}

func matchesTypes(p *model.Post, types []string) bool {
	return len(types) == 0 || slices.Contains(types, p.PrimaryType())
}

// normalizeSearchText lowercases s and drops every whitespace rune.
func normalizeSearchText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func matchesText(p *model.Post, needle string) bool {
	if needle == "" {
		return true
	}

	haystack := p.Title + p.Summary + strings.Join(p.Tags, " ")
	return strings.Contains(normalizeSearchText(haystack), needle)
}

func matchesTags(p *model.Post, tags []string, mode dto.TagMode) bool {
	if len(tags) == 0 {
		return true
	}

	if mode == dto.TagModeOr {
		return slices.ContainsFunc(tags, p.HasTag)
	}
	for _, t := range tags {
		if !p.HasTag(t) {
			return false
		}
	}
	return true
}

func matchesCategory(p *model.Post, category string) bool {
	return category == "" || category == dto.AllCategories || p.Category == category
}

// ParseTags splits a comma separated tag list, dropping empty entries.
func ParseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	return tags
}
