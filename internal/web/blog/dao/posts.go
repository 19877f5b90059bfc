package dao

import (
	"context"
	"encoding/json"
	"time"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// ErrSharedStoreDisabled is returned by snapshot access without a shared store.
var ErrSharedStoreDisabled = errors.New("shared store disabled")

// GetPostsSnapshot reads the shared posts list.
// found is false on a miss or when the stored value is not a list.
func (d *Blog) GetPostsSnapshot(ctx context.Context) (posts []*model.Post, found bool, err error) {
	store, ok := d.shared(ctx)
	if !ok {
		return nil, false, ErrSharedStoreDisabled
	}

	raw, found, err := store.Get(ctx, PostsKey())
	if err != nil {
		return nil, false, errors.Wrap(err, "get posts snapshot")
	}
	if !found {
		return nil, false, nil
	}

	if err = json.Unmarshal(raw, &posts); err != nil {
		return nil, false, errors.Wrap(err, "decode posts snapshot")
	}
	if posts == nil {
		// json null
		return nil, false, nil
	}

	return posts, true, nil
}

// SetPostsSnapshot writes the shared posts list with ttl.
func (d *Blog) SetPostsSnapshot(ctx context.Context, posts []*model.Post, ttl time.Duration) error {
	store, ok := d.shared(ctx)
	if !ok {
		return ErrSharedStoreDisabled
	}
	if posts == nil {
		posts = []*model.Post{}
	}

	raw, err := json.Marshal(posts)
	if err != nil {
		return errors.Wrap(err, "encode posts snapshot")
	}

	return errors.Wrap(store.Set(ctx, PostsKey(), raw, ttl), "set posts snapshot")
}
