package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"aiml-digests/core/interfaces"
)

func TestDisabled(t *testing.T) {
	var client interfaces.LLMClient = Disabled{}

	out, err := client.Complete(context.Background(), interfaces.ChatRequest{UserPrompt: "hi"})
	assert.ErrorIs(t, err, ErrLLMDisabled)
	assert.Empty(t, out)
	assert.False(t, client.Enabled())
}
