package service

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// commentRateWindow is how long a client address waits between comments.
const commentRateWindow = 60 * time.Second

// ListComments returns the comments of slug, newest first.
// Malformed entries are dropped and an unreadable store yields no comments.
func (s *Blog) ListComments(ctx context.Context, slug string) ([]*model.Comment, error) {
	slug, err := sanitizeSlug(slug)
	if err != nil {
		return nil, err
	}

	entries, err := s.dao.ListCommentEntries(ctx, slug)
	if err != nil {
		s.logger.Warn("read comments, use empty list", zap.String("slug", slug), zap.Error(err))
		return []*model.Comment{}, nil
	}

	comments := make([]*model.Comment, 0, len(entries))
	for _, raw := range entries {
		c := new(model.Comment)
		if err := json.Unmarshal(raw, c); err != nil || !c.Valid() {
			s.logger.Debug("drop malformed comment", zap.String("slug", slug), zap.ByteString("raw", raw))
			continue
		}
		comments = append(comments, c)
	}

	// latest appended first among equal dates
	slices.Reverse(comments)
	slices.SortStableFunc(comments, func(a, b *model.Comment) int {
		return cmp.Compare(b.Date, a.Date)
	})

	return comments, nil
}

// PostComment validates, rate limits and stores a comment from clientAddr.
func (s *Blog) PostComment(ctx context.Context,
	req *dto.PostCommentRequest, clientAddr string) (*model.Comment, error) {
	if req == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "empty request")
	}
	slug, err := sanitizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	content, err := sanitizeCommentContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err = s.dao.EngagementAvailable(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	logger := s.logger.With(zap.String("slug", slug), zap.String("client", clientAddr))
	if clientAddr != "" {
		acquired, err := s.dao.AcquireRateLimit(ctx, clientAddr, commentRateWindow)
		switch {
		case err != nil:
			logger.Warn("check comment rate limit, allow", zap.Error(err))
		case !acquired:
			return nil, errors.Wrapf(model.ErrRateLimited, "one comment per %s", commentRateWindow)
		}
	}

	c := &model.Comment{
		ID:      gutils.UUID7(),
		Date:    s.clock().UnixMilli(),
		Author:  sanitizeCommentAuthor(req.Author),
		Content: content,
	}
	if err = s.dao.AppendComment(ctx, slug, c); err != nil {
		return nil, storeError(err, "append comment")
	}

	logger.Info("new comment", zap.String("id", c.ID))
	return c, nil
}

// ImportComments appends comments to slug, oldest first, skipping ids
// already stored. Author and content are sanitized like posted comments.
// It bypasses the rate limit and returns the number appended.
func (s *Blog) ImportComments(ctx context.Context, slug string, comments []*model.Comment) (int, error) {
	slug, err := sanitizeSlug(slug)
	if err != nil {
		return 0, err
	}
	if err = s.dao.EngagementAvailable(ctx); err != nil {
		return 0, errors.WithStack(err)
	}

	entries, err := s.dao.ListCommentEntries(ctx, slug)
	if err != nil {
		return 0, storeError(err, "list comments")
	}
	seen := make(map[string]struct{}, len(entries))
	for _, raw := range entries {
		c := new(model.Comment)
		if json.Unmarshal(raw, c) == nil && c.ID != "" {
			seen[c.ID] = struct{}{}
		}
	}

	pending := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil || c.ID == "" {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}

		content, err := sanitizeCommentContent(c.Content)
		if err != nil {
			s.logger.Debug("skip imported comment", zap.String("id", c.ID), zap.Error(err))
			continue
		}
		seen[c.ID] = struct{}{}
		pending = append(pending, &model.Comment{
			ID:      c.ID,
			Date:    c.Date,
			Author:  sanitizeCommentAuthor(c.Author),
			Content: content,
		})
	}

	slices.SortStableFunc(pending, func(a, b *model.Comment) int {
		return cmp.Compare(a.Date, b.Date)
	})
	for i, c := range pending {
		if err = s.dao.AppendComment(ctx, slug, c); err != nil {
			return i, storeError(err, "append comment")
		}
	}

	return len(pending), nil
}
