package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/db/kv"
)

func postIDs(posts []*model.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetPostsSortedStable(t *testing.T) {
	undated := publicPage("undated", 0)
	undated.Date = ""
	undated.Created = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	env := newTestEnv(testSettings(),
		publicPage("old", 1),
		publicPage("tie-a", 5),
		undated,
		publicPage("tie-b", 5),
		publicPage("new", 9),
	)

	posts, err := env.svc.PostCache().GetPosts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"new", "tie-a", "tie-b", "undated", "old"}, postIDs(posts))
}

func TestGetPostsIdempotentWithinTTL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testSettings(), publicPage("a", 1), publicPage("b", 2))
	cache := env.svc.PostCache()

	first, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := cache.GetPosts(ctx)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, firstJSON, secondJSON)
	require.Equal(t, 1, env.notion.Calls())

	// callers own the returned slices
	first[0].Title = "mutated"
	third, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	require.NotEqual(t, "mutated", third[0].Title)
}

func TestGetPostsSharedWinsOverLocal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testSettings(), publicPage("local", 1))
	cache := env.svc.PostCache()

	posts, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"local"}, postIDs(posts))

	// another instance refreshed the shared copy
	require.NoError(t, env.dao.SetPostsSnapshot(ctx,
		[]*model.Post{{ID: "shared", Slug: "shared"}}, time.Hour))

	posts, err = cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"shared"}, postIDs(posts))
	require.Equal(t, 1, env.notion.Calls())
}

func TestGetPostsSharedHitRefreshesLocal(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := kv.NewMemory(kv.WithMemoryClock(clock.Now))
	d := dao.New(nil, connectedResolver(store), true)
	notionCli := &fakeNotion{tree: buildTree(publicPage("remote", 1))}
	cache := NewPostCache(nil, d, notionCli, testRootID, time.Minute, clock.Now)

	require.NoError(t, d.SetPostsSnapshot(ctx, []*model.Post{{ID: "shared"}}, 90*time.Second))
	_, err := cache.GetPosts(ctx)
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	_, err = cache.GetPosts(ctx)
	require.NoError(t, err)

	// the shared copy expired, the mirror taken at the second hit is 45s old
	clock.Advance(45 * time.Second)
	posts, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"shared"}, postIDs(posts))
	require.Zero(t, notionCli.Calls())
}

func TestGetPostsLocalMirrorWithoutSharedStore(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notionCli := &fakeNotion{tree: buildTree(publicPage("a", 1))}
	cache := NewPostCache(nil, dao.New(nil, nil, false), notionCli, testRootID, 0, clock.Now)
	require.Equal(t, config.MinRevalidate, cache.TTL())

	_, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	_, err = cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, notionCli.Calls())

	notionCli.SetTree(buildTree(publicPage("b", 2)))
	clock.Advance(time.Second)
	posts, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, postIDs(posts))
	require.Equal(t, 2, notionCli.Calls())
}

func TestGetPostsWritesThroughToShared(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testSettings(), publicPage("a", 1))

	_, err := env.svc.PostCache().GetPosts(ctx)
	require.NoError(t, err)

	posts, found, err := env.dao.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"a"}, postIDs(posts))

	// the shared copy expires with the ttl
	env.clock.Advance(env.svc.PostCache().TTL())
	_, found, err = env.dao.GetPostsSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestGetPostsEmptyCollectionIsCached(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testSettings(), publicPage("a", 1))
	env.notion.tree.Block[testRootID].Value.Type = "page"

	posts, err := env.svc.PostCache().GetPosts(ctx)
	require.NoError(t, err)
	require.NotNil(t, posts)
	require.Empty(t, posts)

	raw, found, err := env.store.Get(ctx, dao.PostsKey())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "[]", string(raw))

	_, err = env.svc.PostCache().GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, env.notion.Calls())
}

func TestGetPostsStoreErrorsSwallowed(t *testing.T) {
	ctx := context.Background()
	notionCli := &fakeNotion{tree: buildTree(publicPage("a", 1))}
	d := dao.New(nil, connectedResolver(failingStore{}), true)
	cache := NewPostCache(nil, d, notionCli, testRootID, time.Minute, nil)

	posts, err := cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, postIDs(posts))

	posts, err = cache.GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, postIDs(posts))
	require.Equal(t, 1, notionCli.Calls())
}

func TestGetPostsMalformedSharedIsMiss(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testSettings(), publicPage("a", 1))
	require.NoError(t, env.store.Set(ctx, dao.PostsKey(), []byte(`{"posts": 1}`), 0))

	posts, err := env.svc.PostCache().GetPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, postIDs(posts))
	require.Equal(t, 1, env.notion.Calls())
}

func TestGetPostsRemoteErrorPropagates(t *testing.T) {
	env := newTestEnv(testSettings())
	env.notion.err = errors.New("notion down")

	_, err := env.svc.PostCache().GetPosts(context.Background())
	require.ErrorContains(t, err, "notion down")
}

func TestGetPostsConcurrentMissesCollapse(t *testing.T) {
	env := newTestEnv(testSettings(), publicPage("a", 1))
	cache := env.svc.PostCache()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := cache.GetPosts(context.Background())
			require.NoError(t, err)
			require.Len(t, posts, 1)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, env.notion.Calls(), 8)
	require.GreaterOrEqual(t, env.notion.Calls(), 1)
}

// gatedNotion blocks FetchPageTree until release is closed.
type gatedNotion struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	tree    *notion.RecordMap
}

func (g *gatedNotion) FetchPageTree(ctx context.Context, _ string) (*notion.RecordMap, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return g.tree, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestGetPostsSharedFetchOutlivesCanceledCaller(t *testing.T) {
	gate := &gatedNotion{
		started: make(chan struct{}),
		release: make(chan struct{}),
		tree:    buildTree(publicPage("a", 1)),
	}
	cache := NewPostCache(nil, dao.New(nil, nil, false), gate, testRootID, time.Minute, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	type result struct {
		posts []*model.Post
		err   error
	}
	first := make(chan result, 1)
	go func() {
		posts, err := cache.GetPosts(reqCtx)
		first <- result{posts, err}
	}()
	<-gate.started

	second := make(chan result, 1)
	go func() {
		posts, err := cache.GetPosts(context.Background())
		second <- result{posts, err}
	}()

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	for _, ch := range []chan result{first, second} {
		res := <-ch
		require.NoError(t, res.err)
		require.Equal(t, []string{"a"}, postIDs(res.posts))
	}
}
