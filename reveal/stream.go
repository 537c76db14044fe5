package reveal

import (
	"context"
	"strings"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// Drive consumes a generation event stream and calls resolve when the
// stream reaches a terminal event. Partial chunks are accumulated but do
// not mark the answer ready; a stream that has started is not a stream that
// has finished. Blocks until the stream terminates or ctx is canceled.
// Pass Controller.ResolveAnswer, or a token-bound closure over
// Controller.ResolveAnswerFor when preemption must discard stale results.
func Drive(ctx context.Context, events <-chan ai.AnswerEvent, resolve func(*core.Answer)) {
	start := time.Now()
	var partial strings.Builder

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Kind {
			case ai.AnswerPartial:
				partial.WriteString(event.Chunk)
			case ai.AnswerComplete:
				resolve(event.Answer)
				return
			case ai.AnswerFailed:
				resolve(ApologyAnswer(time.Since(start)))
				return
			}
		}
	}
}

// ApologyAnswer is the user-visible substitute for a failed generation
// call. The session still finalizes normally so the conversation never
// hangs on a backend error.
func ApologyAnswer(elapsed time.Duration) *core.Answer {
	return &core.Answer{
		Text:         "Sorry, something went wrong while putting that answer together. Please try again.",
		ResponseTime: elapsed,
	}
}
