package dto

import "github.com/Laisky/notion-blog/internal/web/blog/model"

// PostCommentRequest is the body of POST /comments.
type PostCommentRequest struct {
	Slug    string `json:"slug"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
}

// ToggleLikeRequest is the body of POST /likes.
type ToggleLikeRequest struct {
	Slug          string `json:"slug"`
	NextLiked     *bool  `json:"nextLiked,omitempty"`
	ClientDecides bool   `json:"clientDecides,omitempty"`
}

// LikeCountsResponse is returned for multi-slug like queries.
type LikeCountsResponse struct {
	Counts model.LikeCounts `json:"counts"`
}

// ErrorResponse is the payload of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
