package reveal

import (
	"sync"
	"testing"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimings keeps the tests fast while preserving the relative ordering of
// the production delays.
func testTimings() Timings {
	return Timings{
		FirstStep:   10 * time.Millisecond,
		Step:        60 * time.Millisecond,
		FastForward: 5 * time.Millisecond,
		FinalStep:   8 * time.Millisecond,
		Complete:    10 * time.Millisecond,
		Safety:      2 * time.Second,
	}
}

type recordingListener struct {
	mu        sync.Mutex
	steps     []int
	stepTimes []time.Time
	waits     int
	finals    []*core.Answer
}

func (l *recordingListener) StepShown(index int, _ core.ReasoningStep) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, index)
	l.stepTimes = append(l.stepTimes, time.Now())
}

func (l *recordingListener) Waiting() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waits++
}

func (l *recordingListener) Finalized(answer *core.Answer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finals = append(l.finals, answer)
}

func (l *recordingListener) snapshot() ([]int, int, []*core.Answer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.steps...), l.waits, append([]*core.Answer(nil), l.finals...)
}

func steps(n int) []core.ReasoningStep {
	out := make([]core.ReasoningStep, n)
	for i := range out {
		out[i] = core.ReasoningStep{Icon: "think", Text: "step"}
	}
	return out
}

func waitForState(t *testing.T, c *Controller, want State, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State() == want
	}, timeout, time.Millisecond, "expected state %s", want)
}

func TestController_StartRequiresSteps(t *testing.T) {
	c := NewController(WithTimings(testTimings()))
	assert.ErrorIs(t, c.Start(nil), ErrNoSteps)
	assert.Equal(t, StateIdle, c.State())
}

func TestController_FullSequenceWithEarlyAnswer(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	answer := &core.Answer{Text: "the answer"}
	require.NoError(t, c.Start(steps(3)))
	c.ResolveAnswer(answer)

	waitForState(t, c, StateComplete, time.Second)

	shown, _, finals := listener.snapshot()
	assert.Equal(t, []int{0, 1, 2}, shown, "steps are shown in order")
	require.Len(t, finals, 1, "exactly one finalize")
	assert.Equal(t, answer, finals[0])
	assert.Equal(t, 3, c.VisibleCount())
}

func TestController_FinalStepGatedOnAnswer(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	require.NoError(t, c.Start(steps(2)))

	waitForState(t, c, StateWaitingForAnswer, time.Second)
	shown, waits, finals := listener.snapshot()
	assert.Equal(t, []int{0}, shown, "the final step must not be visible yet")
	assert.Equal(t, 1, waits)
	assert.Empty(t, finals)

	c.ResolveAnswer(&core.Answer{Text: "late answer"})
	waitForState(t, c, StateComplete, time.Second)

	shown, _, finals = listener.snapshot()
	assert.Equal(t, []int{0, 1}, shown)
	require.Len(t, finals, 1)
	assert.Equal(t, "late answer", finals[0].Text)
}

func TestController_FastForwardAfterAnswer(t *testing.T) {
	listener := &recordingListener{}
	timings := testTimings()
	timings.Step = 250 * time.Millisecond
	c := NewController(WithTimings(timings), WithListener(listener))

	require.NoError(t, c.Start(steps(4)))

	// Wait until step index 1 is visible, then resolve.
	require.Eventually(t, func() bool {
		shown, _, _ := listener.snapshot()
		return len(shown) == 2
	}, 2*time.Second, time.Millisecond)

	resolved := time.Now()
	c.ResolveAnswer(&core.Answer{Text: "early"})
	waitForState(t, c, StateComplete, time.Second)

	// Steps 2 and 3 plus completion ran at fast-forward pace: far quicker
	// than the two normal step delays they would otherwise take.
	assert.Less(t, time.Since(resolved), 150*time.Millisecond,
		"remaining steps must render at the fast-forward delay")

	shown, _, finals := listener.snapshot()
	assert.Equal(t, []int{0, 1, 2, 3}, shown)
	assert.Len(t, finals, 1)
}

func TestController_SafetyTimeoutForceFinalizes(t *testing.T) {
	listener := &recordingListener{}
	timings := testTimings()
	timings.Safety = 80 * time.Millisecond
	c := NewController(WithTimings(timings), WithListener(listener))

	require.NoError(t, c.Start(steps(3)))

	// The answer never arrives.
	waitForState(t, c, StateComplete, time.Second)

	shown, _, finals := listener.snapshot()
	require.Len(t, finals, 1, "safety timeout finalizes exactly once")
	assert.Equal(t, DegradedAnswer().Text, finals[0].Text)
	assert.NotContains(t, shown, 2, "the final step is never shown without an answer")

	// Settle: no second finalize sneaks in afterwards.
	time.Sleep(150 * time.Millisecond)
	_, _, finals = listener.snapshot()
	assert.Len(t, finals, 1)
}

func TestController_SafetyTimeoutUsesPendingAnswer(t *testing.T) {
	listener := &recordingListener{}
	timings := testTimings()
	timings.Step = 500 * time.Millisecond // sequence stalls mid-reveal
	timings.FastForward = 500 * time.Millisecond
	timings.Safety = 50 * time.Millisecond
	c := NewController(WithTimings(timings), WithListener(listener))

	require.NoError(t, c.Start(steps(4)))
	c.ResolveAnswer(&core.Answer{Text: "slow reveal, real answer"})

	waitForState(t, c, StateComplete, time.Second)

	_, _, finals := listener.snapshot()
	require.Len(t, finals, 1)
	assert.Equal(t, "slow reveal, real answer", finals[0].Text)
}

func TestController_RepeatedResolveFinalizesOnce(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	require.NoError(t, c.Start(steps(3)))
	for i := 0; i < 5; i++ {
		c.ResolveAnswer(&core.Answer{Text: "answer"})
	}

	waitForState(t, c, StateComplete, time.Second)
	time.Sleep(50 * time.Millisecond)

	_, _, finals := listener.snapshot()
	assert.Len(t, finals, 1, "toggling responseReady repeatedly must not multiply finalizes")
}

func TestController_PreemptionInvalidatesOldSession(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	require.NoError(t, c.Start(steps(3)))
	// New query arrives mid-sequence.
	require.NoError(t, c.Start(steps(2)))
	c.ResolveAnswer(&core.Answer{Text: "second question's answer"})

	waitForState(t, c, StateComplete, time.Second)
	time.Sleep(50 * time.Millisecond)

	_, _, finals := listener.snapshot()
	require.Len(t, finals, 1, "the preempted session must never finalize")
	assert.Equal(t, "second question's answer", finals[0].Text)
}

func TestController_CancelStopsEverything(t *testing.T) {
	listener := &recordingListener{}
	timings := testTimings()
	timings.Safety = 60 * time.Millisecond
	c := NewController(WithTimings(timings), WithListener(listener))

	require.NoError(t, c.Start(steps(3)))
	c.Cancel()

	assert.Equal(t, StateIdle, c.State())
	time.Sleep(120 * time.Millisecond)

	_, _, finals := listener.snapshot()
	assert.Empty(t, finals, "a canceled session never finalizes, not even via the safety timer")
}

func TestController_ResolveWhileIdleIsNoop(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	c.ResolveAnswer(&core.Answer{Text: "nobody asked"})

	assert.Equal(t, StateIdle, c.State())
	_, _, finals := listener.snapshot()
	assert.Empty(t, finals)
}

func TestController_SingleStepListStillGated(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	require.NoError(t, c.Start(steps(1)))

	waitForState(t, c, StateWaitingForAnswer, time.Second)
	shown, _, _ := listener.snapshot()
	assert.Empty(t, shown, "a lone completion step waits for the answer")

	c.ResolveAnswer(&core.Answer{Text: "now"})
	waitForState(t, c, StateComplete, time.Second)

	shown, _, finals := listener.snapshot()
	assert.Equal(t, []int{0}, shown)
	assert.Len(t, finals, 1)
}

func TestController_StaleTokenResolveIgnored(t *testing.T) {
	listener := &recordingListener{}
	c := NewController(WithTimings(testTimings()), WithListener(listener))

	require.NoError(t, c.Start(steps(2)))
	staleToken := c.Token()

	// A new question preempts; the old generation call still holds the
	// first session's token.
	require.NoError(t, c.Start(steps(2)))
	c.ResolveAnswerFor(staleToken, &core.Answer{Text: "stale result"})

	waitForState(t, c, StateWaitingForAnswer, time.Second)

	c.ResolveAnswerFor(c.Token(), &core.Answer{Text: "fresh result"})
	waitForState(t, c, StateComplete, time.Second)

	_, _, finals := listener.snapshot()
	require.Len(t, finals, 1)
	assert.Equal(t, "fresh result", finals[0].Text,
		"a stale generation result must never finalize the new session")
}
