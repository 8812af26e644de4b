package forum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ummahhub/community-api/internal/domain"
)

func TestCanReply(t *testing.T) {
	assert.True(t, CanReply(&domain.ForumThread{}))
	assert.False(t, CanReply(&domain.ForumThread{IsClosed: true}))
	assert.False(t, CanReply(nil))
}

func TestCanModerate(t *testing.T) {
	assert.False(t, CanModerate(PublicActor))
	assert.True(t, CanModerate(AdminActor(&domain.Admin{Email: "admin@example.org"})))
}

func TestCanAdminReplyOnClosedThread(t *testing.T) {
	closed := &domain.ForumThread{IsClosed: true}
	admin := AdminActor(&domain.Admin{Email: "admin@example.org"})
	assert.True(t, CanAdminReply(closed, admin))
	assert.False(t, CanAdminReply(closed, PublicActor))
}

func TestClassifyReply(t *testing.T) {
	assert.Equal(t, domain.ReplyClassAdmin, ClassifyReply(domain.ForumReply{IsAdminReply: true}))
	// the badge follows the flag, not the author name
	assert.Equal(t, domain.ReplyClassPublic, ClassifyReply(domain.ForumReply{AuthorName: domain.OfficialAuthorName}))
}

func TestSortRepliesByTimestamp(t *testing.T) {
	t1 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	thread := &domain.ForumThread{Replies: []domain.ForumReply{
		{ID: "second", Timestamp: t2},
		{ID: "first", Timestamp: t1},
		{ID: "tie", Timestamp: t2},
	}}

	ForDisplay(thread)

	assert.Equal(t, []string{"first", "second", "tie"}, []string{thread.Replies[0].ID, thread.Replies[1].ID, thread.Replies[2].ID})
}

func TestForDisplayNeverNil(t *testing.T) {
	thread := ForDisplay(&domain.ForumThread{})
	assert.NotNil(t, thread.Replies)
}

func TestSortThreadsNewestFirst(t *testing.T) {
	t1 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	threads := []domain.ForumThread{{ID: "old", Timestamp: t1}, {ID: "new", Timestamp: t1.Add(time.Minute)}}
	SortThreads(threads)
	assert.Equal(t, "new", threads[0].ID)
}
