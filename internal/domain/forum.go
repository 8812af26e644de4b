package domain

import "time"

// OfficialAuthorName is the display name used for moderator replies.
const OfficialAuthorName = "Official"

// ForumThread is a forum question together with its embedded replies.
type ForumThread struct {
	ID         string
	AuthorName string
	Question   string
	Replies    []ForumReply
	Timestamp  time.Time
	IsClosed   bool
}

// ForumReply is one response attached to a thread.
type ForumReply struct {
	ID           string
	AuthorName   string
	Reply        string
	Timestamp    time.Time
	IsAdminReply bool
}

// ReplyClass is the display badge of a reply.
type ReplyClass string

const (
	ReplyClassAdmin  ReplyClass = "ADMIN"
	ReplyClassPublic ReplyClass = "PUBLIC"
)

// HasReply reports whether a reply with id is attached to the thread.
func (t *ForumThread) HasReply(id string) bool {
	_, ok := t.FindReply(id)
	return ok
}

// FindReply returns the reply with id.
func (t *ForumThread) FindReply(id string) (ForumReply, bool) {
	for _, r := range t.Replies {
		if r.ID == id {
			return r, true
		}
	}
	return ForumReply{}, false
}
