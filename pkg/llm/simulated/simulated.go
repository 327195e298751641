package simulated

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"turingtest-be/internal/pkg/logger"
	"turingtest-be/pkg/llm"
)

const (
	ProviderName = "simulated-llm"

	DefaultEndpoint = "https://llm-provider.example.com/v1/chat/completions"
	DefaultModel    = "mock-gpt-4o"
	systemPrompt    = "You are a helpful assistant responding on behalf of the simulation layer."
)

type Config struct {
	Endpoint string
	Token    string
	Model    string
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Provider pretends to call a chat completion API: it logs the request it
// would send, sleeps a random whole number of seconds and returns a canned
// reply quoting the prompt.
type Provider struct {
	cfg    Config
	logger logger.ILogger
	// sleep waits d or until ctx ends; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewProvider(cfg Config, log logger.ILogger) *Provider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Provider{cfg: cfg, logger: log, sleep: sleepCtx}
}

func (p *Provider) GenerateReply(ctx context.Context, req llm.ReplyRequest) (*llm.Reply, error) {
	p.logger.Info("LLM", fmt.Sprintf("Simulating LLM call to %s for conversation %s", p.cfg.Endpoint, req.ConversationId), map[string]interface{}{
		"model": p.cfg.Model,
	})
	p.logger.Debug("LLM", "LLM request payload", map[string]interface{}{
		"model": p.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Prompt},
		},
		"metadata":      map[string]string{"conversationId": req.ConversationId, "email": req.Email},
		"authorization": tokenHint(p.cfg.Token),
	})

	delay, err := p.drawDelay()
	if err != nil {
		return nil, err
	}

	if err := p.sleep(ctx, delay); err != nil {
		return nil, err
	}

	reply := &llm.Reply{
		Provider: ProviderName,
		Message:  Content(req.Prompt),
		DelayMs:  delay.Milliseconds(),
	}

	p.logger.Info("LLM", fmt.Sprintf("LLM simulation complete for conversation %s (delay %d ms)", req.ConversationId, reply.DelayMs), nil)
	return reply, nil
}

// Content is the fixed reply template.
func Content(prompt string) string {
	return strings.Join([]string{
		fmt.Sprintf("Here is a thoughtful response based on your prompt: \"%s\".", prompt),
		"If this were a real LLM call, the content would be generated dynamically.",
		"Use this response to demonstrate how the frontend handles delayed, streaming-like output from a large language model.",
	}, " ")
}

// drawDelay picks whole seconds uniformly in [MinDelay, MaxDelay].
func (p *Provider) drawDelay() (time.Duration, error) {
	minSec := int64(p.cfg.MinDelay / time.Second)
	maxSec := int64(p.cfg.MaxDelay / time.Second)
	if maxSec <= minSec {
		return time.Duration(minSec) * time.Second, nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(maxSec-minSec+1))
	if err != nil {
		return 0, fmt.Errorf("draw delay: %w", err)
	}
	return time.Duration(minSec+n.Int64()) * time.Second, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func tokenHint(token string) string {
	if token == "" {
		return "Bearer mock-token"
	}
	if len(token) <= 4 {
		return "Bearer ****"
	}
	return "Bearer ****" + token[len(token)-4:]
}
