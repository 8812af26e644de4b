package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
)

const testBaseURL = "http://llm.test/v1"

func newTestGenerator() *OpenAIGenerator {
	return NewOpenAIGenerator(config.LLMConfig{
		BaseURL:   testBaseURL,
		APIKey:    "sk-test",
		Model:     "gpt-4o-mini",
		MaxTokens: 128,
	}, zap.NewNop())
}

func TestRenderAnswerPrompt(t *testing.T) {
	prompt, err := Render(KindAnswer, struct{ Question string }{"What is the best way to start learning Arabic?"})
	require.NoError(t, err)
	assert.Equal(t, KindAnswer, prompt.Kind)
	assert.Contains(t, prompt.User, "Question: What is the best way to start learning Arabic?")
	assert.NotEmpty(t, prompt.System)
}

func TestRenderOptionalFields(t *testing.T) {
	prompt, err := Render(KindEventDescription, struct{ Title, Type, Location string }{"Family Iftar", "community", ""})
	require.NoError(t, err)
	assert.NotContains(t, prompt.User, "Location:")

	_, err = Render(Kind("unknown"), nil)
	assert.Error(t, err)
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/chat/completions").
		MatchHeader("Authorization", "Bearer sk-test").
		Reply(http.StatusOK).
		JSON(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "Start with the alphabet."}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})

	text, err := newTestGenerator().Generate(context.Background(), Prompt{Kind: KindAnswer, System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "Start with the alphabet.", text)
	assert.True(t, gock.IsDone())
}

func TestGenerateEmptyChoices(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/chat/completions").
		Reply(http.StatusOK).
		JSON(map[string]any{"id": "chatcmpl-2", "choices": []any{}})

	_, err := newTestGenerator().Generate(context.Background(), Prompt{Kind: KindAnswer})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerateProviderError(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/chat/completions").
		Reply(http.StatusTooManyRequests).
		JSON(map[string]any{"error": map[string]any{"message": "rate limited", "type": "requests"}})

	_, err := newTestGenerator().Generate(context.Background(), Prompt{Kind: KindAnswer})
	assert.ErrorContains(t, err, "chat completion")
}

func TestDisabledGenerator(t *testing.T) {
	_, err := DisabledGenerator{}.Generate(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrDisabled)
}
