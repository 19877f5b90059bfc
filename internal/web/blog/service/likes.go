package service

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/config"
)

// storeError keeps model.ErrStoreUnavailable and classifies any other
// store failure as model.ErrStorage.
func storeError(err error, msg string) error {
	if errors.Is(err, model.ErrStoreUnavailable) {
		return errors.Wrap(err, msg)
	}
	return errors.Wrapf(model.ErrStorage, "%s: %v", msg, err)
}

// LikesMode returns the configured likes policy.
func (s *Blog) LikesMode() string {
	return s.settings.Engagement.LikesMode
}

// GetLikeCount returns the like counter of slug, 0 when unreadable.
func (s *Blog) GetLikeCount(ctx context.Context, slug string) (int64, error) {
	slug, err := sanitizeSlug(slug)
	if err != nil {
		return 0, err
	}

	n, err := s.dao.GetLikeCount(ctx, slug)
	if err != nil {
		s.logger.Warn("read like count, use 0", zap.String("slug", slug), zap.Error(err))
		return 0, nil
	}

	return max(n, 0), nil
}

// GetLikedState reports whether visitor liked slug. In lite mode the
// caller tracks the state, so it is always false.
func (s *Blog) GetLikedState(ctx context.Context, slug, visitor string, lite bool) bool {
	if lite || visitor == "" {
		return false
	}

	liked, err := s.dao.IsLiker(ctx, slug, visitor)
	if err != nil {
		s.logger.Warn("read liked state, use false", zap.String("slug", slug), zap.Error(err))
		return false
	}
	return liked
}

// GetLikeState returns the counter and the visitor's liked state of slug.
func (s *Blog) GetLikeState(ctx context.Context, slug, visitor string, lite bool) (*model.LikeState, error) {
	slug, err := sanitizeSlug(slug)
	if err != nil {
		return nil, err
	}

	n, err := s.GetLikeCount(ctx, slug)
	if err != nil {
		return nil, err
	}

	return &model.LikeState{
		Slug:  slug,
		Likes: n,
		Liked: s.GetLikedState(ctx, slug, visitor, lite),
	}, nil
}

// GetLikeCounts returns the counters of every slug.
func (s *Blog) GetLikeCounts(ctx context.Context, slugs []string) (model.LikeCounts, error) {
	counts := make(model.LikeCounts, len(slugs))
	for _, slug := range slugs {
		n, err := s.GetLikeCount(ctx, slug)
		if err != nil {
			return nil, err
		}
		counts[slug] = n
	}

	return counts, nil
}

// ToggleLike flips the like of visitor on slug.
//
// In full mode membership decides the direction. In lite mode a request
// with ClientDecides and NextLiked moves the counter in the claimed
// direction without touching membership. The counter never goes below 0.
func (s *Blog) ToggleLike(ctx context.Context, visitor string, req *dto.ToggleLikeRequest) (*model.LikeState, error) {
	if req == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "empty request")
	}
	slug, err := sanitizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	if err = s.dao.EngagementAvailable(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	if !s.ToggleNeedsVisitor(req) {
		return s.setLikeLite(ctx, slug, *req.NextLiked)
	}

	if visitor == "" {
		return nil, errors.Wrap(model.ErrInvalidArgument, "visitor id is required")
	}
	return s.toggleLikeFull(ctx, slug, visitor)
}

// ToggleNeedsVisitor reports whether req is resolved through the visitor's
// membership. It is false only for a lite request the client decides.
func (s *Blog) ToggleNeedsVisitor(req *dto.ToggleLikeRequest) bool {
	return req == nil ||
		s.LikesMode() != config.LikesModeLite ||
		!req.ClientDecides ||
		req.NextLiked == nil
}

func (s *Blog) setLikeLite(ctx context.Context, slug string, liked bool) (*model.LikeState, error) {
	var (
		n   int64
		err error
	)
	if liked {
		n, err = s.dao.IncrLikeCount(ctx, slug)
	} else {
		n, err = s.dao.DecrLikeCount(ctx, slug)
	}
	if err != nil {
		return nil, storeError(err, "update like count")
	}

	if n, err = s.floorLikeCount(ctx, slug, n); err != nil {
		return nil, err
	}

	return &model.LikeState{Slug: slug, Likes: n, Liked: liked}, nil
}

func (s *Blog) toggleLikeFull(ctx context.Context, slug, visitor string) (*model.LikeState, error) {
	member, err := s.dao.IsLiker(ctx, slug, visitor)
	if err != nil {
		return nil, storeError(err, "check liker")
	}

	var n int64
	if member {
		if err = s.dao.RemoveLiker(ctx, slug, visitor); err != nil {
			return nil, storeError(err, "remove liker")
		}
		if n, err = s.dao.DecrLikeCount(ctx, slug); err != nil {
			return nil, storeError(err, "decr like count")
		}
	} else {
		if err = s.dao.AddLiker(ctx, slug, visitor); err != nil {
			return nil, storeError(err, "add liker")
		}
		if n, err = s.dao.IncrLikeCount(ctx, slug); err != nil {
			return nil, storeError(err, "incr like count")
		}
	}

	if n, err = s.floorLikeCount(ctx, slug, n); err != nil {
		return nil, err
	}

	return &model.LikeState{Slug: slug, Likes: n, Liked: !member}, nil
}

// floorLikeCount resets a negative counter to 0.
func (s *Blog) floorLikeCount(ctx context.Context, slug string, n int64) (int64, error) {
	if n >= 0 {
		return n, nil
	}

	if err := s.dao.SetLikeCount(ctx, slug, 0); err != nil {
		return 0, storeError(err, "reset like count")
	}
	return 0, nil
}
