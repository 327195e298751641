package factory

import (
	"fmt"
	"time"

	"turingtest-be/internal/pkg/logger"
	"turingtest-be/pkg/llm"
	"turingtest-be/pkg/llm/simulated"
)

type Options struct {
	Provider string
	Endpoint string
	Token    string
	Model    string
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewReplyGenerator(opts Options, log logger.ILogger) (llm.ReplyGenerator, error) {
	switch opts.Provider {
	case "", "simulated":
		return simulated.NewProvider(simulated.Config{
			Endpoint: opts.Endpoint,
			Token:    opts.Token,
			Model:    opts.Model,
			MinDelay: opts.MinDelay,
			MaxDelay: opts.MaxDelay,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", opts.Provider)
	}
}
