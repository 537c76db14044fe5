package mock

import (
	"context"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields, and supports a
// configurable delay so reveal-timing tests can control when the "real"
// answer arrives.
type MockGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	GenerateAnswerFunc func(ctx context.Context, req *ai.AnswerRequest) (*core.Answer, error)

	// StreamAnswerFunc is called by StreamAnswer if set.
	StreamAnswerFunc func(ctx context.Context, req *ai.AnswerRequest) (<-chan ai.AnswerEvent, error)

	// Delay is applied before the default implementations respond.
	Delay time.Duration

	// Err, when set, makes the default implementations fail.
	Err error

	callCount int
}

// NewMockGenerator creates a mock generator that echoes the query.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer returns a canned answer built from the request, after Delay.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, req *ai.AnswerRequest) (*core.Answer, error) {
	m.callCount++

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, req)
	}

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.cannedAnswer(req), nil
}

// StreamAnswer yields one partial chunk and a terminal event, after Delay.
func (m *MockGenerator) StreamAnswer(ctx context.Context, req *ai.AnswerRequest) (<-chan ai.AnswerEvent, error) {
	m.callCount++

	if m.StreamAnswerFunc != nil {
		return m.StreamAnswerFunc(ctx, req)
	}

	events := make(chan ai.AnswerEvent, 2)
	go func() {
		defer close(events)
		if err := m.wait(ctx); err != nil {
			events <- ai.AnswerEvent{Kind: ai.AnswerFailed, Err: err}
			return
		}
		if m.Err != nil {
			events <- ai.AnswerEvent{Kind: ai.AnswerFailed, Err: m.Err}
			return
		}
		answer := m.cannedAnswer(req)
		events <- ai.AnswerEvent{Kind: ai.AnswerPartial, Chunk: answer.Text}
		events <- ai.AnswerEvent{Kind: ai.AnswerComplete, Answer: answer}
	}()
	return events, nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
	m.StreamAnswerFunc = nil
	m.Delay = 0
	m.Err = nil
}

func (m *MockGenerator) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *MockGenerator) cannedAnswer(req *ai.AnswerRequest) *core.Answer {
	sources := make([]core.ID, 0, len(req.Context))
	for _, result := range req.Context {
		sources = append(sources, result.Entry.Id)
	}
	return &core.Answer{
		Text:    "mock answer: " + req.Query,
		Sources: sources,
	}
}
