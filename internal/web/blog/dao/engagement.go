package dao

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// GetLikeCount reads the like counter of slug, 0 on a miss.
func (d *Blog) GetLikeCount(ctx context.Context, slug string) (int64, error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	raw, found, err := store.Get(ctx, LikeCountKey(slug))
	if err != nil {
		return 0, errors.Wrapf(err, "get like count of %q", slug)
	}
	if !found {
		return 0, nil
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse like count of %q", slug)
	}
	return n, nil
}

// SetLikeCount overwrites the like counter of slug.
func (d *Blog) SetLikeCount(ctx context.Context, slug string, n int64) error {
	store, err := d.engagement(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(store.Set(ctx, LikeCountKey(slug), []byte(strconv.FormatInt(n, 10)), 0),
		"set like count of %q", slug)
}

// IncrLikeCount increments the like counter of slug.
func (d *Blog) IncrLikeCount(ctx context.Context, slug string) (int64, error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n, err := store.Incr(ctx, LikeCountKey(slug))
	return n, errors.Wrapf(err, "incr like count of %q", slug)
}

// DecrLikeCount decrements the like counter of slug.
func (d *Blog) DecrLikeCount(ctx context.Context, slug string) (int64, error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n, err := store.Decr(ctx, LikeCountKey(slug))
	return n, errors.Wrapf(err, "decr like count of %q", slug)
}

// IsLiker reports whether visitor is in the liker set of slug.
func (d *Blog) IsLiker(ctx context.Context, slug, visitor string) (bool, error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	ok, err := store.SIsMember(ctx, LikeUsersKey(slug), visitor)
	return ok, errors.Wrapf(err, "check liker of %q", slug)
}

// AddLiker adds visitor to the liker set of slug.
func (d *Blog) AddLiker(ctx context.Context, slug, visitor string) error {
	store, err := d.engagement(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(store.SAdd(ctx, LikeUsersKey(slug), visitor), "add liker of %q", slug)
}

// RemoveLiker removes visitor from the liker set of slug.
func (d *Blog) RemoveLiker(ctx context.Context, slug, visitor string) error {
	store, err := d.engagement(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(store.SRem(ctx, LikeUsersKey(slug), visitor), "remove liker of %q", slug)
}

// AppendComment appends c to the comment list of slug.
func (d *Blog) AppendComment(ctx context.Context, slug string, c *model.Comment) error {
	store, err := d.engagement(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode comment")
	}

	return errors.Wrapf(store.RPush(ctx, CommentsKey(slug), raw), "append comment of %q", slug)
}

// ListCommentEntries returns every raw entry of the comment list of slug,
// in insertion order.
func (d *Blog) ListCommentEntries(ctx context.Context, slug string) ([][]byte, error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	entries, err := store.LRange(ctx, CommentsKey(slug), 0, -1)
	return entries, errors.Wrapf(err, "list comments of %q", slug)
}

// AcquireRateLimit sets the rate limit token of addr if absent.
// ok is false when a token already exists.
func (d *Blog) AcquireRateLimit(ctx context.Context, addr string, ttl time.Duration) (ok bool, err error) {
	store, err := d.engagement(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	ok, err = store.SetNX(ctx, RateLimitKey(addr), []byte("1"), ttl)
	return ok, errors.Wrapf(err, "acquire rate limit of %q", addr)
}
