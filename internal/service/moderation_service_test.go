package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/llm"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

func TestScenarioCreateReplyClose(t *testing.T) {
	svc, _, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()

	thread := createThread(t, svc)
	assert.False(t, thread.IsClosed)
	assert.Empty(t, thread.Replies)

	reply, err := moderation.SubmitAdminReply(ctx, testAdmin, thread.ID, forum.ReplyInput{
		AuthorName:   domain.OfficialAuthorName,
		Reply:        "Start with the alphabet.",
		IsAdminReply: true,
	})
	require.NoError(t, err)

	got, err := svc.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, reply, got.Replies[0])
	assert.Equal(t, domain.ReplyClassAdmin, forum.ClassifyReply(got.Replies[0]))

	require.NoError(t, moderation.CloseThread(ctx, testAdmin, thread.ID))
	got, err = svc.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.False(t, forum.CanReply(got))
}

func TestClosedThreadRejectsPublicReplyWithoutWrites(t *testing.T) {
	svc, repo, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()

	thread := createThread(t, svc)
	require.NoError(t, moderation.CloseThread(ctx, testAdmin, thread.ID))
	writes := repo.totalWrites()

	inputs := []forum.ReplyInput{
		{AuthorName: "Yusuf", Reply: "Is this still open?"},
		{AuthorName: "", Reply: ""},
		{AuthorName: "Maryam", Reply: "Thanks", IsAdminReply: true},
	}
	for _, input := range inputs {
		_, err := moderation.SubmitPublicReply(ctx, forum.PublicActor, thread.ID, input)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeThreadClosed))
		assert.Equal(t, thread.ID, apperrors.ToDomainError(err).Details["thread_id"])
	}
	assert.Equal(t, writes, repo.totalWrites())
}

func TestAdminMayReplyToClosedThread(t *testing.T) {
	svc, _, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()

	thread := createThread(t, svc)
	require.NoError(t, moderation.CloseThread(ctx, testAdmin, thread.ID))

	reply, err := moderation.SubmitAdminReply(ctx, testAdmin, thread.ID, forum.ReplyInput{Reply: "Closing note from the team."})
	require.NoError(t, err)
	assert.Equal(t, domain.OfficialAuthorName, reply.AuthorName)
	assert.True(t, reply.IsAdminReply)
}

func TestPublicReplyCannotClaimAdminBadge(t *testing.T) {
	svc, _, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()
	thread := createThread(t, svc)

	reply, err := moderation.SubmitPublicReply(ctx, forum.PublicActor, thread.ID, forum.ReplyInput{ID: "chosen", AuthorName: "Yusuf", Reply: "Hi", IsAdminReply: true})
	require.NoError(t, err)
	assert.False(t, reply.IsAdminReply)
	assert.NotEqual(t, "chosen", reply.ID)

	_, err = moderation.SubmitPublicReply(ctx, forum.PublicActor, thread.ID, forum.ReplyInput{AuthorName: " official ", Reply: "Hi"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestPublicReplyCannotSmuggleOfficialNameOrMarkup(t *testing.T) {
	svc, repo, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()
	thread := createThread(t, svc)
	writes := repo.totalWrites()

	for _, name := range []string{"<b>Official</b>", "&#79;fficial"} {
		_, err := moderation.SubmitPublicReply(ctx, forum.PublicActor, thread.ID, forum.ReplyInput{AuthorName: name, Reply: "Hi"})
		require.Error(t, err, name)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), name)
	}
	assert.Equal(t, writes, repo.totalWrites())

	reply, err := moderation.SubmitPublicReply(ctx, forum.PublicActor, thread.ID, forum.ReplyInput{
		AuthorName: "Yusuf",
		Reply:      "Salaam &lt;script&gt;alert(1)&lt;/script&gt;",
	})
	require.NoError(t, err)
	assert.NotContains(t, reply.Reply, "<script")

	got, err := svc.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.NotContains(t, got.Replies[0].Reply, "<")
}

func TestModerationRequiresAdmin(t *testing.T) {
	svc, repo, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	ctx := context.Background()
	thread := createThread(t, svc)
	writes := repo.totalWrites()

	checks := map[string]error{
		"close":   moderation.CloseThread(ctx, forum.PublicActor, thread.ID),
		"reopen":  moderation.ReopenThread(ctx, forum.PublicActor, thread.ID),
		"edit":    moderation.EditQuestion(ctx, forum.PublicActor, thread.ID, "A different question"),
		"delete":  moderation.DeleteThread(ctx, forum.PublicActor, thread.ID),
		"unreply": moderation.DeleteReply(ctx, forum.PublicActor, thread.ID, "r"),
	}
	_, err := moderation.SubmitAdminReply(ctx, forum.PublicActor, thread.ID, forum.ReplyInput{Reply: "x"})
	checks["admin reply"] = err
	_, err = moderation.EditReply(ctx, forum.PublicActor, thread.ID, "r", forum.ReplyInput{Reply: "x"})
	checks["edit reply"] = err

	for name, err := range checks {
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAuthorized), name)
	}
	assert.Equal(t, writes, repo.totalWrites())
}

func TestSuggestionFailureKeepsDraftAndManualReply(t *testing.T) {
	svc, _, _ := newTestForum(t)
	moderation := NewModerationService(svc)
	generator := &stubGenerator{err: errors.New("provider timeout")}
	suggestions := NewSuggestionService(generator, svc, nil)
	ctx := context.Background()
	thread := createThread(t, svc)

	draft, err := suggestions.PrefillReply(ctx, thread.ID, "As-salamu alaykum, ")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSuggestionUnavailable))
	assert.Equal(t, "As-salamu alaykum, ", draft.Text)
	assert.False(t, draft.Suggested)
	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0].User, thread.Question)

	reply, err := moderation.SubmitAdminReply(ctx, testAdmin, thread.ID, forum.ReplyInput{Reply: draft.Text + "start with the alphabet."})
	require.NoError(t, err)
	assert.Equal(t, "As-salamu alaykum, start with the alphabet.", reply.Reply)
}

func TestPrefillReplySuccess(t *testing.T) {
	svc, repo, _ := newTestForum(t)
	suggestions := NewSuggestionService(&stubGenerator{text: "  Start with the alphabet.\n"}, svc, nil)
	thread := createThread(t, svc)
	writes := repo.totalWrites()

	draft, err := suggestions.PrefillReply(context.Background(), thread.ID, "")
	require.NoError(t, err)
	assert.True(t, draft.Suggested)
	assert.Equal(t, "Start with the alphabet.", draft.Text)
	assert.Equal(t, writes, repo.totalWrites())
}

func TestSuggestionBlankOutputIsUnavailable(t *testing.T) {
	svc, _, _ := newTestForum(t)
	suggestions := NewSuggestionService(&stubGenerator{text: "   "}, svc, nil)

	_, err := suggestions.SuggestAnswer(context.Background(), "Where is the library?")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSuggestionUnavailable))
}

func TestSuggestionDisabled(t *testing.T) {
	svc, _, _ := newTestForum(t)
	suggestions := NewSuggestionService(nil, svc, nil)

	_, err := suggestions.SuggestTestimonial(context.Background(), TestimonialInput{Author: "Amina", Topic: "Weekend school"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrDisabled)
	assert.Equal(t, "not_configured", apperrors.ToDomainError(err).Details["reason"])
}

func TestSiblingSuggestionsValidateInput(t *testing.T) {
	svc, _, _ := newTestForum(t)
	generator := &stubGenerator{text: "Generated"}
	suggestions := NewSuggestionService(generator, svc, nil)
	ctx := context.Background()

	_, err := suggestions.SuggestEventDescription(ctx, EventDescriptionInput{})
	require.Error(t, err)
	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "type")
	assert.Empty(t, generator.prompts)

	text, err := suggestions.SuggestEventDescription(ctx, EventDescriptionInput{Title: "Family Iftar", Type: "community", Location: "Main hall"})
	require.NoError(t, err)
	assert.Equal(t, "Generated", text)

	_, err = suggestions.SuggestTeamBio(ctx, TeamBioInput{Name: "Yusuf", Title: "Imam"})
	require.NoError(t, err)

	require.Len(t, generator.prompts, 2)
	assert.Equal(t, llm.KindEventDescription, generator.prompts[0].Kind)
	assert.Contains(t, generator.prompts[0].User, "Location: Main hall")
	assert.Equal(t, llm.KindTeamBio, generator.prompts[1].Kind)
}
