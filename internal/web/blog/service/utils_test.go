package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMarkdown2HTML(t *testing.T) {
	md := []byte("```python\na = 2\n```")
	expect := `<pre><code class="language-python">a = 2
</code></pre>`
	require.Equal(t, expect, ParseMarkdown2HTML(md), "markdown to HTML conversion failed")

	html := ParseMarkdown2HTML([]byte("see [docs](https://example.com)"))
	require.Contains(t, html, `target="_blank"`)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "ab", Truncate("abc", 2))
	require.Equal(t, "你好", Truncate("你好世界", 2))
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "abc", Truncate("abc", 0))
}

func TestEnsureAbsoluteURL(t *testing.T) {
	require.Equal(t, "https://a.com/x.png", ensureAbsoluteURL("https://blog.com", "https://a.com/x.png"))
	require.Equal(t, "https://cdn.com/x.png", ensureAbsoluteURL("https://blog.com", "//cdn.com/x.png"))
	require.Equal(t, "https://blog.com/x.png", ensureAbsoluteURL("https://blog.com/", "/x.png"))
	require.Empty(t, ensureAbsoluteURL("https://blog.com", " "))
}

func TestPostURL(t *testing.T) {
	require.Equal(t, "https://blog.com/hello%20world", postURL("https://blog.com/", "hello world"))
}
