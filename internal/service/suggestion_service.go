package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/llm"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// AnswerInput asks for a suggested forum answer.
type AnswerInput struct {
	Question string `json:"question" validate:"required,max=5000"`
}

// EventDescriptionInput asks for an event blurb.
type EventDescriptionInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Type     string `json:"type" validate:"required,max=50"`
	Location string `json:"location" validate:"max=200"`
}

// TeamBioInput asks for a team member biography.
type TeamBioInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Title string `json:"title" validate:"required,max=100"`
	Notes string `json:"notes" validate:"max=1000"`
}

// TestimonialInput asks for a testimonial draft.
type TestimonialInput struct {
	Author string `json:"author" validate:"required,max=100"`
	Topic  string `json:"topic" validate:"required,max=500"`
}

// ReplyDraft is the text placed in an admin's reply box. Suggested is false when the
// caller's own draft came back unchanged.
type ReplyDraft struct {
	ThreadID  string `json:"threadId"`
	Text      string `json:"text"`
	Suggested bool   `json:"suggested"`
}

// SuggestionService prefills drafts from the text generator. It never writes to the store.
type SuggestionService struct {
	generator llm.Generator
	forum     *ForumService
	logger    *zap.Logger
}

// NewSuggestionService constructs the service.
func NewSuggestionService(generator llm.Generator, forumService *ForumService, logger *zap.Logger) *SuggestionService {
	if generator == nil {
		generator = llm.DisabledGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{generator: generator, forum: forumService, logger: logger}
}

// SuggestAnswer asks for an answer to question.
func (s *SuggestionService) SuggestAnswer(ctx context.Context, question string) (string, error) {
	input := AnswerInput{Question: strings.TrimSpace(question)}
	return s.suggest(ctx, llm.KindAnswer, &input)
}

// PrefillReply suggests a reply for the thread's question. On failure the caller's
// draft is returned untouched alongside a SUGGESTION_UNAVAILABLE error.
func (s *SuggestionService) PrefillReply(ctx context.Context, threadID, draft string) (ReplyDraft, error) {
	kept := ReplyDraft{ThreadID: threadID, Text: draft}

	thread, err := s.forum.GetThread(ctx, threadID)
	if err != nil {
		return kept, err
	}
	text, err := s.SuggestAnswer(ctx, thread.Question)
	if err != nil {
		return kept, err
	}
	return ReplyDraft{ThreadID: threadID, Text: text, Suggested: true}, nil
}

// SuggestEventDescription drafts an event description.
func (s *SuggestionService) SuggestEventDescription(ctx context.Context, input EventDescriptionInput) (string, error) {
	return s.suggest(ctx, llm.KindEventDescription, &input)
}

// SuggestTeamBio drafts a team member biography.
func (s *SuggestionService) SuggestTeamBio(ctx context.Context, input TeamBioInput) (string, error) {
	return s.suggest(ctx, llm.KindTeamBio, &input)
}

// SuggestTestimonial drafts a testimonial.
func (s *SuggestionService) SuggestTestimonial(ctx context.Context, input TestimonialInput) (string, error) {
	return s.suggest(ctx, llm.KindTestimonial, &input)
}

func (s *SuggestionService) suggest(ctx context.Context, kind llm.Kind, input any) (string, error) {
	if err := s.forum.Codec().Validate(input, "invalid suggestion request"); err != nil {
		return "", err
	}
	prompt, err := llm.Render(kind, input)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = llm.ErrEmptyCompletion
		}
	}
	if err != nil {
		s.logger.Warn("suggestion failed", zap.String("kind", string(kind)), zap.Error(err))
		details := map[string]any{"kind": string(kind)}
		if errors.Is(err, llm.ErrDisabled) {
			details["reason"] = "not_configured"
		}
		return "", apperrors.NewSuggestionUnavailable(err, details)
	}
	return text, nil
}
