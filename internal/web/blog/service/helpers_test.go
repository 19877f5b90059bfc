package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/db/kv"
)

const (
	testRootID       = "01234567-89ab-cdef-0123-456789abcdef"
	testCollectionID = "coll"
	testViewID       = "view"
)

var testSchema = map[string]*notion.PropertySchema{
	"t":  {Name: "title", Type: notion.PropTitle},
	"s":  {Name: "slug", Type: notion.PropText},
	"sm": {Name: "summary", Type: notion.PropText},
	"st": {Name: "status", Type: notion.PropSelect},
	"ty": {Name: "type", Type: notion.PropSelect},
	"tg": {Name: "tags", Type: notion.PropMultiSelect},
	"c":  {Name: "category", Type: notion.PropSelect},
	"d":  {Name: "date", Type: notion.PropDate},
	"th": {Name: "thumbnail", Type: notion.PropFile},
	"au": {Name: "author", Type: notion.PropPerson},
	"f":  {Name: "featured", Type: notion.PropCheckbox},
}

// fixturePage describes one collection row of a test tree.
type fixturePage struct {
	ID       string
	Title    string
	Slug     string
	Status   string
	Type     string
	Tags     string
	Category string
	Date     string
	Created  time.Time
	// Raw overrides properties by schema id
	Raw map[string]string
}

func textProp(s string) json.RawMessage {
	b, _ := json.Marshal([][]string{{s}})
	return b
}

func (p fixturePage) block() *notion.Block {
	props := map[string]json.RawMessage{}
	set := func(id, v string) {
		if v != "" {
			props[id] = textProp(v)
		}
	}
	set("t", p.Title)
	set("s", p.Slug)
	set("st", p.Status)
	set("ty", p.Type)
	set("tg", p.Tags)
	set("c", p.Category)
	if p.Date != "" {
		props["d"] = json.RawMessage(fmt.Sprintf(
			`[["‣", [["d", {"type": "date", "start_date": %q}]]]]`, p.Date))
	}
	for id, raw := range p.Raw {
		props[id] = json.RawMessage(raw)
	}

	created := p.Created
	if created.IsZero() {
		created = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &notion.Block{
		ID:          p.ID,
		Type:        notion.BlockTypePage,
		Properties:  props,
		CreatedTime: created.UnixMilli(),
	}
}

// buildTree returns a collection_view_page tree holding pages in order.
func buildTree(pages ...fixturePage) *notion.RecordMap {
	tree := &notion.RecordMap{
		Block: map[string]*notion.BlockRecord{
			testRootID: {Value: &notion.Block{
				ID:           testRootID,
				Type:         notion.BlockTypeCollectionViewPage,
				CollectionID: testCollectionID,
				ViewIDs:      []string{testViewID},
			}},
		},
		Collection: map[string]*notion.CollectionRecord{
			testCollectionID: {Value: &notion.Collection{ID: testCollectionID, Schema: testSchema}},
		},
	}

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		tree.Block[p.ID] = &notion.BlockRecord{Value: p.block()}
		ids = append(ids, p.ID)
	}
	tree.SetCollectionQuery(testCollectionID, testViewID, &notion.CollectionQueryResult{BlockIDs: ids})

	return tree
}

// publicPage is a public post dated day days after 2024-01-01.
func publicPage(id string, day int, tags ...string) fixturePage {
	return fixturePage{
		ID:     id,
		Title:  "Title " + id,
		Slug:   id,
		Status: model.StatusPublic,
		Type:   model.TypePost,
		Tags:   strings.Join(tags, ","),
		Date:   time.Date(2024, 1, 1+day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
	}
}

// fakeNotion is a notion.Client that counts calls.
type fakeNotion struct {
	mu    sync.Mutex
	calls int
	tree  *notion.RecordMap
	err   error
}

func (f *fakeNotion) FetchPageTree(_ context.Context, _ string) (*notion.RecordMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func (f *fakeNotion) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeNotion) SetTree(tree *notion.RecordMap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree = tree
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errStoreDown = errors.New("store down")

// failingStore fails every operation.
type failingStore struct{}

var _ kv.Interface = failingStore{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errStoreDown }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (failingStore) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (failingStore) Incr(context.Context, string) (int64, error) { return 0, errStoreDown }
func (failingStore) Decr(context.Context, string) (int64, error) { return 0, errStoreDown }
func (failingStore) SAdd(context.Context, string, string) error { return errStoreDown }
func (failingStore) SRem(context.Context, string, string) error { return errStoreDown }
func (failingStore) SIsMember(context.Context, string, string) (bool, error) {
	return false, errStoreDown
}
func (failingStore) RPush(context.Context, string, []byte) error { return errStoreDown }
func (failingStore) LRange(context.Context, string, int64, int64) ([][]byte, error) {
	return nil, errStoreDown
}

func connectedResolver(store kv.Interface) *kv.Resolver {
	return kv.NewResolver(func(context.Context) (kv.Interface, error) {
		return store, nil
	}, nil)
}

func testSettings() config.Settings {
	return config.Settings{
		Site: config.Site{
			Title:       "My Blog",
			Description: "notes",
			Link:        "https://blog.example.com",
			Author:      "Jane",
			OGImageURL:  "https://og.example.com",
		},
		Notion: config.Notion{PageID: testRootID},
		Posts:  config.Posts{Revalidate: 5 * time.Minute, PageSize: 10},
		Engagement: config.Engagement{
			LikesMode:  config.LikesModeFull,
			Production: true,
		},
	}.Normalize()
}

type testEnv struct {
	svc    *Blog
	dao    *dao.Blog
	store  *kv.Memory
	notion *fakeNotion
	clock  *fakeClock
}

// newTestEnv builds a service over a connected in-process store.
func newTestEnv(settings config.Settings, pages ...fixturePage) *testEnv {
	clock := newFakeClock()
	env := &testEnv{
		store:  kv.NewMemory(kv.WithMemoryClock(clock.Now)),
		notion: &fakeNotion{tree: buildTree(pages...)},
		clock:  clock,
	}
	env.dao = dao.New(nil, connectedResolver(env.store), settings.Engagement.Production)
	env.svc = New(nil, env.dao, env.notion, settings, WithClock(env.clock.Now))
	return env
}
