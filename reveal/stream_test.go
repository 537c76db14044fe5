package reveal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrive_ResolvesOnComplete(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))
	require.NoError(t, c.Start(steps(2)))

	events := make(chan ai.AnswerEvent, 4)
	events <- ai.AnswerEvent{Kind: ai.AnswerPartial, Chunk: "the "}
	events <- ai.AnswerEvent{Kind: ai.AnswerPartial, Chunk: "answer"}
	events <- ai.AnswerEvent{Kind: ai.AnswerComplete, Answer: &core.Answer{Text: "the answer"}}
	close(events)

	Drive(context.Background(), events, c.ResolveAnswer)

	waitForState(t, c, StateComplete, time.Second)
	_, _, finals := listener.snapshot()
	require.Len(t, finals, 1)
	assert.Equal(t, "the answer", finals[0].Text)
}

func TestDrive_PartialsDoNotMarkReady(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))
	require.NoError(t, c.Start(steps(2)))

	events := make(chan ai.AnswerEvent)
	done := make(chan struct{})
	go func() {
		Drive(context.Background(), events, c.ResolveAnswer)
		close(done)
	}()

	events <- ai.AnswerEvent{Kind: ai.AnswerPartial, Chunk: "streaming..."}

	// All non-final steps render, then the controller must keep waiting: a
	// stream that has started is not a stream that has finished.
	waitForState(t, c, StateWaitingForAnswer, time.Second)

	events <- ai.AnswerEvent{Kind: ai.AnswerComplete, Answer: &core.Answer{Text: "done"}}
	close(events)
	<-done

	waitForState(t, c, StateComplete, time.Second)
}

func TestDrive_ApologyOnFailure(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))
	require.NoError(t, c.Start(steps(2)))

	events := make(chan ai.AnswerEvent, 1)
	events <- ai.AnswerEvent{Kind: ai.AnswerFailed, Err: errors.New("model unavailable")}
	close(events)

	Drive(context.Background(), events, c.ResolveAnswer)

	waitForState(t, c, StateComplete, time.Second)
	_, _, finals := listener.snapshot()
	require.Len(t, finals, 1, "a failed generation still finalizes the session")
	assert.Equal(t, ApologyAnswer(0).Text, finals[0].Text)
}

func TestDrive_ContextCancelReturns(t *testing.T) {
	c := NewController(WithTimings(testTimings()))
	require.NoError(t, c.Start(steps(2)))

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan ai.AnswerEvent)

	done := make(chan struct{})
	go func() {
		Drive(ctx, events, c.ResolveAnswer)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drive did not return after context cancellation")
	}
}

func TestDrive_ClosedChannelReturns(t *testing.T) {
	c := NewController(WithTimings(testTimings()))
	require.NoError(t, c.Start(steps(2)))

	events := make(chan ai.AnswerEvent)
	close(events)

	assert.NotPanics(t, func() { Drive(context.Background(), events, c.ResolveAnswer) })
}
