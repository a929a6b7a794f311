package ai

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

func TestTextContentConcatenatesTextBlocks(t *testing.T) {
	got := textContent([]anthropic.ContentBlockUnion{
		{Type: "text", Text: `{"score": `},
		{Type: "tool_use"},
		{Type: "text", Text: "85}"},
	})
	assert.Equal(t, `{"score": 85}`, got)
}

func TestTextContentNoTextBlocks(t *testing.T) {
	assert.Empty(t, textContent(nil))
	assert.Empty(t, textContent([]anthropic.ContentBlockUnion{{Type: "tool_use"}}))
}

func TestConvertMessages(t *testing.T) {
	msgs, system := convertMessages([]domain.ChatMessage{
		{Role: "system", Content: "You are a recruiter."},
		{Role: "user", Content: "Score this posting."},
		{Role: "assistant", Content: "Understood."},
		{Role: "system", Content: "second system message ignored"},
	})
	assert.Equal(t, "You are a recruiter.", system)
	assert.Len(t, msgs, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
}
