package notion

import (
	"regexp"
	"strings"
)

var (
	hexIDRegexp  = regexp.MustCompile(`(?i)[0-9a-f]{32,}`)
	uuidIDRegexp = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

// IDToUUID converts a page id to the canonical dashed lowercase form.
//
// Accepted inputs are a 32 hex id, a dashed uuid, or any string ending in
// one of those such as `My-Page-0123456789abcdef0123456789abcdef`.
// Unrecognized input is returned trimmed and unchanged.
func IDToUUID(id string) string {
	id = strings.TrimSpace(id)
	if m := uuidIDRegexp.FindAllString(id, -1); len(m) > 0 {
		return strings.ToLower(m[len(m)-1])
	}

	m := hexIDRegexp.FindAllString(strings.ReplaceAll(id, "-", ""), -1)
	if len(m) == 0 {
		return id
	}
	// the id is the tail of the last hex run, a hex-looking title may precede it
	h := strings.ToLower(m[len(m)-1])
	h = h[len(h)-32:]
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}
