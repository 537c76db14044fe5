package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	llm    llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken("none"),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		llm:    client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// GenerateAnswer produces a complete answer in one call.
func (g *Generator) GenerateAnswer(ctx context.Context, req *ai.AnswerRequest) (*core.Answer, error) {
	g.logger.Debug("generating answer", "query", req.Query, "contextEntries", len(req.Context))

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, buildPrompt(req))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return nil, err
	}

	return buildAnswer(req, text, time.Since(start)), nil
}

// StreamAnswer produces an answer incrementally. Partial chunks are forwarded
// as they arrive; the terminal event carries the assembled answer.
func (g *Generator) StreamAnswer(ctx context.Context, req *ai.AnswerRequest) (<-chan ai.AnswerEvent, error) {
	events := make(chan ai.AnswerEvent, 16)
	start := time.Now()

	go func() {
		defer close(events)

		var assembled strings.Builder
		text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, buildPrompt(req),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				assembled.Write(chunk)
				select {
				case events <- ai.AnswerEvent{Kind: ai.AnswerPartial, Chunk: string(chunk)}:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}))
		if err != nil {
			g.logger.Error("answer stream failed", "err", err)
			events <- ai.AnswerEvent{Kind: ai.AnswerFailed, Err: err}
			return
		}

		// Some backends return the full text without invoking the
		// streaming callback.
		if assembled.Len() == 0 {
			assembled.WriteString(text)
		}

		events <- ai.AnswerEvent{
			Kind:   ai.AnswerComplete,
			Answer: buildAnswer(req, assembled.String(), time.Since(start)),
		}
	}()

	return events, nil
}

// buildPrompt renders the ranked retrieval context, prior turns, and the query
// into a single prompt for OpenAI-compatible completion endpoints.
func buildPrompt(req *ai.AnswerRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Answer the question using only the provided context.\n\n")

	if len(req.Context) > 0 {
		sb.WriteString("Context:\n")
		for _, result := range req.Context {
			sb.WriteString("[")
			sb.WriteString(result.Entry.Title)
			sb.WriteString("]\n")
			sb.WriteString(result.Entry.Content)
			sb.WriteString("\n\n")
		}
	}

	if len(req.History) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range req.History {
			sb.WriteString(turn)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(req.Query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// buildAnswer assembles the final Answer, attributing the context entries as
// sources and suggesting related entry titles as follow-ups.
func buildAnswer(req *ai.AnswerRequest, text string, elapsed time.Duration) *core.Answer {
	sources := make([]core.ID, 0, len(req.Context))
	suggestions := make([]string, 0, len(req.Context))
	for _, result := range req.Context {
		sources = append(sources, result.Entry.Id)
		suggestions = append(suggestions, result.Entry.Title)
	}

	return &core.Answer{
		Text:         strings.TrimSpace(text),
		Sources:      sources,
		Suggestions:  suggestions,
		ResponseTime: elapsed,
	}
}
