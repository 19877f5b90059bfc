package service

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

func TestPostMeta(t *testing.T) {
	svc := newTestEnv(testSettings()).svc

	p := feedPost("hello world", 1)
	p.Title = "Hello World"
	p.Summary = "intro"
	m := svc.PostMeta(p)
	require.Equal(t, "Hello World", m.Title)
	require.Equal(t, "intro", m.Description)
	require.Equal(t, model.TypePost, m.Type)
	require.Equal(t, "https://blog.example.com/hello%20world", m.URL)
	require.Equal(t, "https://og.example.com/Hello%20World.png", m.Image)
	require.Equal(t, "2024-01-01T00:00:00Z", m.Date)

	p.Thumbnail = "/images/cover.png"
	require.Equal(t, "https://blog.example.com/images/cover.png", svc.PostMeta(p).Image)

	p.Thumbnail = "https://cdn.example.com/x.png"
	require.Equal(t, "https://cdn.example.com/x.png", svc.PostMeta(p).Image)
}

func TestFeedMeta(t *testing.T) {
	svc := newTestEnv(testSettings()).svc

	home := svc.HomeMeta()
	require.Equal(t, "My Blog", home.Title)
	require.Equal(t, "Website", home.Type)
	require.Equal(t, "https://blog.example.com", home.URL)

	require.Equal(t, "https://blog.example.com/tag/deep%20learning", svc.TagMeta("deep learning").URL)
	require.Equal(t, "https://blog.example.com/category/Dev", svc.CategoryMeta("Dev").URL)
}

func TestRenderSitemap(t *testing.T) {
	draft := feedPost("draft", 9)
	draft.Status = []string{"Draft"}
	noSlug := feedPost("noslug", 8)
	noSlug.Slug = ""
	posts := []*model.Post{draft, noSlug, feedPost("b", 2), feedPost("a", 1)}

	body, err := renderSitemap("https://blog.example.com", posts, time.Now())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), xml.Header))

	var set sitemapURLSet
	require.NoError(t, xml.Unmarshal(body, &set))
	require.Equal(t, sitemapNS, set.XMLNS)
	require.Len(t, set.URLs, 3)
	require.Equal(t, sitemapURL{
		Loc:        "https://blog.example.com",
		LastMod:    "2024-01-02T00:00:00.000Z",
		ChangeFreq: "daily",
		Priority:   "1.0",
	}, set.URLs[0])
	require.Equal(t, "https://blog.example.com/b", set.URLs[1].Loc)
	require.Equal(t, "0.7", set.URLs[1].Priority)
	require.Equal(t, "https://blog.example.com/a", set.URLs[2].Loc)
	require.Equal(t, "2024-01-01T00:00:00.000Z", set.URLs[2].LastMod)
}

func TestSitemapDegradesToRoot(t *testing.T) {
	env := newTestEnv(testSettings())
	env.notion.err = errors.New("notion down")

	body, err := env.svc.Sitemap(context.Background())
	require.NoError(t, err)

	var set sitemapURLSet
	require.NoError(t, xml.Unmarshal(body, &set))
	require.Len(t, set.URLs, 1)
	require.Equal(t, "https://blog.example.com", set.URLs[0].Loc)
	require.Equal(t, "2024-06-01T12:00:00.000Z", set.URLs[0].LastMod)
}

func TestRSS(t *testing.T) {
	draft := publicPage("draft", 9)
	draft.Status = "Draft"
	withSummary := publicPage("a", 1)
	withSummary.Raw = map[string]string{"sm": `[["some **bold** text"]]`}
	env := newTestEnv(testSettings(), withSummary, publicPage("b", 2), draft)

	out, err := env.svc.RSS(context.Background())
	require.NoError(t, err)
	require.Contains(t, out, "<title>My Blog</title>")
	require.Contains(t, out, "<link>https://blog.example.com/a</link>")
	require.Contains(t, out, "<link>https://blog.example.com/b</link>")
	require.Contains(t, out, "&lt;strong&gt;bold&lt;/strong&gt;")
	require.NotContains(t, out, "blog.example.com/draft")
	require.Less(t, strings.Index(out, "example.com/b<"), strings.Index(out, "example.com/a<"))

	env.notion.err = errors.New("notion down")
	env.clock.Advance(time.Hour)
	_, err = env.svc.RSS(context.Background())
	require.Error(t, err)
}
