package domain

import "time"

// Comment is one entry of a complaint discussion thread.
// Author fields are a snapshot taken when the comment was posted.
type Comment struct {
	ID           string
	ComplaintID  string
	Seq          int64
	AuthorID     string
	AuthorName   string
	AuthorRole   string
	AuthorAvatar string
	Text         string
	CreatedAt    time.Time
}
