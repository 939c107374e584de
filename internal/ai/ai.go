// Package ai drafts articles with a hosted language model and illustrates
// them with a hosted image model.
package ai

import (
	"context"
	"errors"
)

// ErrNoContent is returned when a model answers without usable output.
var ErrNoContent = errors.New("ai: empty model response")

// Draft is the structured article a Writer returns.
type Draft struct {
	Title        string `json:"title"`
	Dek          string `json:"dek"`
	Excerpt      string `json:"excerpt"`
	BodyMarkdown string `json:"body_markdown"`
	Body         string `json:"body,omitempty"`
}

// WriteRequest describes the article to draft.
type WriteRequest struct {
	Category string
	Topic    string
	Mode     string
	Source   string // markdown extracted from the source URL, may be empty
}

// Writer drafts an article.
type Writer interface {
	Write(ctx context.Context, req WriteRequest) (*Draft, error)
	Provider() string
}

// ImageGenerator turns a prompt into an image URL. The URL may be
// short-lived.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SourceExtractor fetches a page and returns its main text as markdown.
type SourceExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}
