package model

// LikeState is the like counter of a post and whether the visitor liked it.
type LikeState struct {
	Slug  string `json:"slug"`
	Likes int64  `json:"likes"`
	Liked bool   `json:"liked"`
}

// LikeCounts maps slugs to like counters.
type LikeCounts map[string]int64
