package dao

import (
	"context"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/db/kv"
)

func connectedResolver(store kv.Interface) *kv.Resolver {
	return kv.NewResolver(func(context.Context) (kv.Interface, error) {
		return store, nil
	}, nil)
}

func TestPostsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	d := New(nil, connectedResolver(store), true)

	_, found, err := d.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, found)

	posts := []*model.Post{{ID: "1", Slug: "a", Title: "A"}}
	require.NoError(t, d.SetPostsSnapshot(ctx, posts, time.Minute))

	got, found, err := d.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", got[0].Slug)

	// an empty list is a valid snapshot
	require.NoError(t, d.SetPostsSnapshot(ctx, nil, time.Minute))
	got, found, err = d.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, got)

	require.NoError(t, store.Set(ctx, PostsKey(), []byte(`{"not":"a list"}`), 0))
	_, found, err = d.GetPostsSnapshot(ctx)
	require.Error(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, PostsKey(), []byte(`null`), 0))
	_, found, err = d.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPostsSnapshotWithoutSharedStore(t *testing.T) {
	d := New(nil, nil, false)
	_, _, err := d.GetPostsSnapshot(context.Background())
	require.ErrorIs(t, err, ErrSharedStoreDisabled)
	require.ErrorIs(t, d.SetPostsSnapshot(context.Background(), nil, time.Minute), ErrSharedStoreDisabled)
}

func TestEngagementStoreSelection(t *testing.T) {
	ctx := context.Background()

	prod := New(nil, nil, true)
	require.True(t, prod.Production())
	require.ErrorIs(t, prod.EngagementAvailable(ctx), model.ErrStoreUnavailable)
	_, err := prod.IncrLikeCount(ctx, "a")
	require.True(t, errors.Is(err, model.ErrStoreUnavailable))

	fallback := kv.NewMemory()
	dev := New(nil, nil, false, WithFallback(fallback))
	require.NoError(t, dev.EngagementAvailable(ctx))
	n, err := dev.IncrLikeCount(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	raw, found, err := fallback.Get(ctx, LikeCountKey("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(raw))
}

func TestEngagementOps(t *testing.T) {
	ctx := context.Background()
	d := New(nil, connectedResolver(kv.NewMemory()), true)

	n, err := d.GetLikeCount(ctx, "a")
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, d.SetLikeCount(ctx, "a", 5))
	n, err = d.DecrLikeCount(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	require.NoError(t, d.AddLiker(ctx, "a", "v1"))
	ok, err := d.IsLiker(ctx, "a", "v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, d.RemoveLiker(ctx, "a", "v1"))
	ok, err = d.IsLiker(ctx, "a", "v1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, d.AppendComment(ctx, "a", &model.Comment{ID: "c1", Date: 1, Content: "hi"}))
	entries, err := d.ListCommentEntries(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.JSONEq(t, `{"id":"c1","date":1,"author":"","content":"hi"}`, string(entries[0]))

	ok, err = d.AcquireRateLimit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = d.AcquireRateLimit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeys(t *testing.T) {
	require.Equal(t, "notion:posts", PostsKey())
	require.Equal(t, "comments:a", CommentsKey("a"))
	require.Equal(t, "likes:count:a", LikeCountKey("a"))
	require.Equal(t, "likes:users:a", LikeUsersKey("a"))
	require.Equal(t, "rate_limit:1.2.3.4", RateLimitKey("1.2.3.4"))
}
