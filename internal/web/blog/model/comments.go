package model

// Comment is one entry of a post's append-only comment list.
type Comment struct {
	ID string `json:"id"`
	// Date unix milliseconds, newest first when listed
	Date    int64  `json:"date"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Valid reports whether a decoded entry carries every required field.
func (c *Comment) Valid() bool {
	return c != nil && c.ID != "" && c.Date > 0 && c.Content != ""
}
