package models

import (
	"context"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// Request is one opaque "ask the model" call: the conversation state, the
// role-scoped tools the model may request, and the system instruction.
type Request struct {
	Turns             chat.Conversation
	Tools             []capability.Descriptor
	SystemInstruction string
}

// Response is what a provider returns: free text, one or more function
// calls, or both.
type Response struct {
	Text          string
	FunctionCalls []chat.FunctionCall
}

// Agent is the LLM provider boundary.
type Agent interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Embedder produces one embedding vector per input string. Only the
// knowledge searcher uses it; the orchestration loop never does.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
