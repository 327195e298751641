package llm

import (
	"context"
)

// ReplyRequest is one prompt sent on behalf of a user.
type ReplyRequest struct {
	Prompt         string
	ConversationId string // chat id, passed through for correlation
	Email          string
}

type Reply struct {
	Provider string
	Message  string
	DelayMs  int64
}

// ReplyGenerator defines the contract for any LLM backend.
type ReplyGenerator interface {
	// GenerateReply blocks until the reply is ready or ctx ends.
	GenerateReply(ctx context.Context, req ReplyRequest) (*Reply, error)
}

// GeneratorFunc adapts a function to ReplyGenerator.
type GeneratorFunc func(ctx context.Context, req ReplyRequest) (*Reply, error)

func (f GeneratorFunc) GenerateReply(ctx context.Context, req ReplyRequest) (*Reply, error) {
	return f(ctx, req)
}
