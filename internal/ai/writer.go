package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

//go:embed article_schema.json
var articleSchema string

// MaxSourceChars caps the extracted source text sent to the model.
const MaxSourceChars = 6000

const systemPrompt = "You are an editor for a newspaper-style UX publication. " +
	"Write in a calm, authoritative tone. Output JSON only."

// WriterConfig holds the model settings for LLMWriter.
type WriterConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// promptFunc sends one structured prompt and returns the first text block.
type promptFunc func(system, user, schema, apiKey string, settings types.RequestSettings) (string, error)

// LLMWriter drafts articles with Anthropic structured output.
type LLMWriter struct {
	cfg    WriterConfig
	prompt promptFunc
}

// NewLLMWriter creates an LLMWriter.
func NewLLMWriter(cfg WriterConfig) *LLMWriter {
	return &LLMWriter{cfg: cfg, prompt: anthropicPrompt}
}

func anthropicPrompt(system, user, schema, apiKey string, settings types.RequestSettings) (string, error) {
	response, err := anthropic.PromptWithSettings(system, user, schema, apiKey, settings)
	if err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", ErrNoContent
	}
	return response.Content[0].Text, nil
}

// Provider names the text model vendor recorded on generated articles.
func (w *LLMWriter) Provider() string { return "anthropic" }

// Write drafts an article. The call is abandoned when ctx is done.
func (w *LLMWriter) Write(ctx context.Context, req WriteRequest) (*Draft, error) {
	settings := types.RequestSettings{
		Model:       w.cfg.Model,
		MaxTokens:   w.cfg.MaxTokens,
		Temperature: w.cfg.Temperature,
	}
	user := UserPrompt(req)

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := w.prompt(systemPrompt, user, articleSchema, w.cfg.APIKey, settings)
		done <- result{text, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("writer: %w", res.err)
	}

	var d Draft
	if err := json.Unmarshal([]byte(res.text), &d); err != nil {
		return nil, fmt.Errorf("writer: parse structured response: %w", err)
	}
	if d.BodyMarkdown == "" {
		d.BodyMarkdown = d.Body
	}
	if d.Title == "" && d.BodyMarkdown == "" {
		return nil, ErrNoContent
	}
	slog.Info("article drafted", "category", req.Category, "title", d.Title)
	return &d, nil
}

// UserPrompt renders the drafting instructions for req.
func UserPrompt(req WriteRequest) string {
	mode := req.Mode
	if mode == "" {
		mode = "rewrite"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write an article for category %q in a calm, authoritative tone.\n", req.Category)
	if req.Topic != "" {
		fmt.Fprintf(&b, "Focus the article on the topic: %q.\n", req.Topic)
	}
	fmt.Fprintf(&b, "Mode: %s\n", mode)
	fmt.Fprintf(&b, "Source:\n%s\n\n", truncateRunes(req.Source, MaxSourceChars))
	b.WriteString("Return JSON with keys: title, dek, excerpt, body_markdown. Body should include h2s, bullets if useful.")
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
