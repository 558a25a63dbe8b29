package aifix

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/config"
)

// Completer produces a completion for a prompt. The remote OpenAI client
// implements it; when no API key is configured a disabled completer that
// always errors is used instead, so callers never branch on availability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type disabledCompleter struct{}

func (disabledCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("AI generation is not configured")
}

const promptTemplate = `User problem:
%s

You are a 60-second life coach. Return: 1) Quick situation analysis 2) 3-5 immediate actions 3) Short motivation line 4) Next 2-3 hour micro-plan Tone: empathetic, clear, practical.`

// Generator turns a problem description into an action plan. It prefers the
// remote completer and falls back to the deterministic local template on any
// error, recording the reason so the UI can surface a degradation notice.
type Generator struct {
	completer Completer
	enabled   bool
	logger    logging.Logger

	mu             sync.Mutex
	fallbackReason string
}

// NewGenerator selects the completer once at startup based on whether a
// usable API key is configured.
func NewGenerator(cfg config.AIConfig, logger logging.Logger) *Generator {
	log := logger.With("module", "aifix")
	if cfg.APIKey == "" {
		log.Info(context.Background(), "no API key configured, using local template only")
		return &Generator{completer: disabledCompleter{}, enabled: false, logger: log}
	}
	log.Info(context.Background(), "remote generation enabled", "model", cfg.Model)
	return &Generator{completer: NewOpenAIClient(cfg), enabled: true, logger: log}
}

// Enabled reports whether remote generation is configured.
func (g *Generator) Enabled() bool {
	return g.enabled
}

// Complete forwards a raw prompt to the active completer.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.completer.Complete(ctx, prompt)
}

// Generate produces a plan for the problem text. Empty or whitespace-only
// input yields an empty plan. Any remote failure degrades to the local
// template and records the failure reason.
func (g *Generator) Generate(ctx context.Context, problemText string) string {
	if strings.TrimSpace(problemText) == "" {
		return ""
	}

	prompt := fmt.Sprintf(promptTemplate, problemText)
	result, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn(ctx, "remote generation failed, using local template", "error", err.Error())
		g.setFallbackReason(err.Error())
		return LocalTemplate(problemText)
	}
	if strings.TrimSpace(result) == "" {
		g.logger.Warn(ctx, "remote generation returned empty text, using local template")
		g.setFallbackReason("empty completion")
		return LocalTemplate(problemText)
	}
	return result
}

func (g *Generator) setFallbackReason(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallbackReason = reason
}

// FallbackReason returns the reason of the most recent degradation to the
// local template, or an empty string if none was recorded.
func (g *Generator) FallbackReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fallbackReason
}

// ClearFallbackReason discards the recorded degradation reason.
func (g *Generator) ClearFallbackReason() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallbackReason = ""
}
