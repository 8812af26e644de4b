package forum

import (
	"sort"

	"github.com/ummahhub/community-api/internal/domain"
)

// SortReplies orders replies oldest first. Insertion order breaks ties.
func SortReplies(replies []domain.ForumReply) {
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].Timestamp.Before(replies[j].Timestamp)
	})
}

// SortThreads orders threads newest first.
func SortThreads(threads []domain.ForumThread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Timestamp.After(threads[j].Timestamp)
	})
}

// ForDisplay normalises a thread read from the store: replies never nil and time ordered.
func ForDisplay(thread *domain.ForumThread) *domain.ForumThread {
	if thread == nil {
		return nil
	}
	if thread.Replies == nil {
		thread.Replies = []domain.ForumReply{}
	}
	SortReplies(thread.Replies)
	return thread
}
