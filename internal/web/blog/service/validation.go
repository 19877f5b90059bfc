package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/errors/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

const (
	// maxSlugLength caps the length of post slugs in engagement requests.
	maxSlugLength = 256
	// maxCommentAuthorLength caps the length of comment author names.
	maxCommentAuthorLength = 50
	// maxCommentContentLength caps the length of comment content.
	maxCommentContentLength = 1000
	// maxSearchTextLength caps the length of feed search text.
	maxSearchTextLength = 200
	// maxFeedTags caps the number of tags a feed query may combine.
	maxFeedTags = 20

	// anonymousAuthor replaces an empty comment author.
	anonymousAuthor = "Anonymous"
)

var (
	stripPolicy   = bluemonday.StrictPolicy()
	angleReplacer = strings.NewReplacer("<", "", ">", "")
)

// sanitizeOptionalText trims input, checks for null bytes, enforces maxLen runes, and returns the sanitized value.
// It accepts the raw input string, a rune length limit, and a field label for error context, returning the sanitized string.
func sanitizeOptionalText(input string, maxLen int, field string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", errors.Wrapf(model.ErrInvalidArgument, "%s contains invalid null byte", field)
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return "", errors.Wrapf(model.ErrInvalidArgument, "%s exceeds max length %d", field, maxLen)
	}
	return trimmed, nil
}

// sanitizeRequiredText trims input, enforces maxLen runes, and returns the sanitized value or an error.
// It accepts the raw input string, a rune length limit, and a field label, returning the sanitized string.
func sanitizeRequiredText(input string, maxLen int, field string) (string, error) {
	trimmed, err := sanitizeOptionalText(input, maxLen, field)
	if err != nil {
		return "", err
	}
	if trimmed == "" {
		return "", errors.Wrapf(model.ErrInvalidArgument, "%s is required", field)
	}
	return trimmed, nil
}

// sanitizeSlug validates a post slug used as a store key.
func sanitizeSlug(slug string) (string, error) {
	return sanitizeRequiredText(slug, maxSlugLength, "slug")
}

// sanitizeCommentAuthor strips every markup from author, defaults it to
// anonymousAuthor and truncates it to maxCommentAuthorLength runes.
func sanitizeCommentAuthor(author string) string {
	plain := html.UnescapeString(stripPolicy.Sanitize(author))
	plain = strings.TrimSpace(angleReplacer.Replace(plain))
	plain = strings.ReplaceAll(plain, "\x00", "")
	if plain == "" {
		return anonymousAuthor
	}

	return Truncate(plain, maxCommentAuthorLength)
}

// sanitizeCommentContent requires non-empty content and truncates it to
// maxCommentContentLength runes. Content is stored and rendered as plain text.
func sanitizeCommentContent(content string) (string, error) {
	trimmed, err := sanitizeRequiredText(content, 0, "content")
	if err != nil {
		return "", err
	}

	return Truncate(trimmed, maxCommentContentLength), nil
}

// sanitizeFeedQuery bounds user supplied feed filters.
func sanitizeFeedQuery(text string, tags []string) (string, []string, error) {
	text, err := sanitizeOptionalText(text, maxSearchTextLength, "q")
	if err != nil {
		return "", nil, err
	}
	if len(tags) > maxFeedTags {
		return "", nil, errors.Wrapf(model.ErrInvalidArgument, "too many tags, max %d", maxFeedTags)
	}

	return text, tags, nil
}
