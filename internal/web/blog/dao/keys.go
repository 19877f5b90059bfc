package dao

// Store key layout.
const (
	postsKey          = "notion:posts"
	commentsKeyPrefix = "comments:"
	likeCountPrefix   = "likes:count:"
	likeUsersPrefix   = "likes:users:"
	rateLimitPrefix   = "rate_limit:"
)

// PostsKey returns the key of the shared posts snapshot.
func PostsKey() string { return postsKey }

// CommentsKey returns the comment list key of slug.
func CommentsKey(slug string) string { return commentsKeyPrefix + slug }

// LikeCountKey returns the like counter key of slug.
func LikeCountKey(slug string) string { return likeCountPrefix + slug }

// LikeUsersKey returns the liker set key of slug.
func LikeUsersKey(slug string) string { return likeUsersPrefix + slug }

// RateLimitKey returns the comment rate limit key of a client address.
func RateLimitKey(addr string) string { return rateLimitPrefix + addr }
