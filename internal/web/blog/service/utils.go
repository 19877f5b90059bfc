package service

import (
	"net/url"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ParseMarkdown2HTML renders markdown to html, links open in a new tab.
func ParseMarkdown2HTML(md []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})

	return strings.TrimSpace(string(markdown.ToHTML(md, p, renderer)))
}

// Truncate truncate string to n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}

	var count int
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}

	return s
}

// ensureAbsoluteURL resolves ref against base unless it is already absolute.
func ensureAbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// postURL returns the absolute url of the post with slug.
func postURL(link, slug string) string {
	return strings.TrimRight(link, "/") + "/" + url.PathEscape(slug)
}
