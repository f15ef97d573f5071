// ABOUTME: Disabled LLM client used when no API key is configured
// ABOUTME: Every completion fails with ErrLLMDisabled so callers never branch on availability

package llm

import (
	"context"
	"errors"

	"aiml-digests/core/interfaces"
)

// ErrLLMDisabled is returned by every call on a Disabled client
var ErrLLMDisabled = errors.New("LLM provider not configured")

// Disabled is the null-object LLM client
type Disabled struct{}

// Complete always fails
func (Disabled) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	return "", ErrLLMDisabled
}

// Enabled reports false
func (Disabled) Enabled() bool { return false }

var _ interfaces.LLMClient = Disabled{}
