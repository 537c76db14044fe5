package reveal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/askit/core"
)

// State is the controller's position in the reveal sequence.
type State int

const (
	StateIdle State = iota
	StateRevealing
	StateWaitingForAnswer
	StateShowingFinalStep
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRevealing:
		return "revealing"
	case StateWaitingForAnswer:
		return "waiting-for-answer"
	case StateShowingFinalStep:
		return "showing-final-step"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Timings holds the pacing delays for a reveal sequence. Tests inject short
// values; production uses DefaultTimings.
type Timings struct {
	FirstStep   time.Duration
	Step        time.Duration
	FastForward time.Duration
	FinalStep   time.Duration
	Complete    time.Duration
	Safety      time.Duration
}

// DefaultTimings returns the standard pacing.
func DefaultTimings() Timings {
	return Timings{
		FirstStep:   300 * time.Millisecond,
		Step:        700 * time.Millisecond,
		FastForward: 150 * time.Millisecond,
		FinalStep:   250 * time.Millisecond,
		Complete:    500 * time.Millisecond,
		Safety:      30 * time.Second,
	}
}

// Listener receives reveal progress events. Callbacks fire on timer
// goroutines; implementations must be safe for that.
type Listener interface {
	// StepShown fires when the step at index becomes visible.
	StepShown(index int, step core.ReasoningStep)
	// Waiting fires when all non-final steps are visible but the answer
	// has not arrived yet.
	Waiting()
	// Finalized fires exactly once per session with the committed answer.
	Finalized(answer *core.Answer)
}

type noopListener struct{}

func (n *noopListener) StepShown(_ int, _ core.ReasoningStep) {}
func (n *noopListener) Waiting()                              {}
func (n *noopListener) Finalized(_ *core.Answer)              {}

// Controller paces the display of reasoning steps while a real answer
// resolves in the background, and guarantees exactly one finalize per
// session no matter how the timers and the answer race.
//
// The final step is shown only after the answer is ready. If the answer
// never arrives, the safety timeout force-finalizes with a degraded
// placeholder answer instead of leaving the session hanging.
type Controller struct {
	mu       sync.Mutex
	timings  Timings
	listener Listener
	logger   *slog.Logger

	session       uint64
	state         State
	steps         []core.ReasoningStep
	visible       int
	pending       *core.Answer
	responseReady bool
	completed     bool
	stepTimer     *time.Timer
	safetyTimer   *time.Timer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTimings overrides the default pacing.
func WithTimings(timings Timings) ControllerOption {
	return func(c *Controller) {
		c.timings = timings
	}
}

// WithListener sets the progress listener.
// Default is a no-op listener.
func WithListener(listener Listener) ControllerOption {
	return func(c *Controller) {
		if listener == nil {
			listener = &noopListener{}
		}
		c.listener = listener
	}
}

// WithControllerLogger sets a custom logger.
// Default is slog.Default().
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewController creates a reveal controller in the Idle state.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		timings:  DefaultTimings(),
		listener: &noopListener{},
		logger:   slog.Default(),
		state:    StateIdle,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins a new reveal session with the given step list. The last
// element is the completion step and is held back until the answer is
// ready. Any session already in flight is preempted: its timers are
// invalidated and it never finalizes.
func (c *Controller) Start(steps []core.ReasoningStep) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.session++
	c.state = StateRevealing
	c.steps = steps

	session := c.session
	c.stepTimer = time.AfterFunc(c.timings.FirstStep, func() {
		c.showNext(session)
	})
	c.safetyTimer = time.AfterFunc(c.timings.Safety, func() {
		c.forceFinalize(session)
	})
	return nil
}

// Token identifies the active session. A generation call started for one
// question can hold its token and resolve through ResolveAnswerFor, so a
// result arriving after preemption is ignored instead of landing on the
// next question's session.
func (c *Controller) Token() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ResolveAnswer delivers the real answer to the active session. If the
// reveal sequence is still running it switches to fast-forward pacing; if
// it is already waiting, the final step is scheduled immediately. Calling
// it again on the same session replaces the pending answer but causes no
// extra transitions.
func (c *Controller) ResolveAnswer(answer *core.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolveLocked(c.session, answer)
}

// ResolveAnswerFor delivers an answer only if token still identifies the
// active session.
func (c *Controller) ResolveAnswerFor(token uint64, answer *core.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolveLocked(token, answer)
}

func (c *Controller) resolveLocked(token uint64, answer *core.Answer) {
	if token != c.session || c.state == StateIdle || c.completed {
		return
	}

	c.pending = answer
	alreadyReady := c.responseReady
	c.responseReady = true
	session := c.session

	switch c.state {
	case StateRevealing:
		if alreadyReady {
			return
		}
		// Reschedule the in-flight step at the fast-forward pace.
		if c.stepTimer != nil {
			c.stepTimer.Stop()
		}
		c.stepTimer = time.AfterFunc(c.timings.FastForward, func() {
			c.showNext(session)
		})
	case StateWaitingForAnswer:
		c.state = StateShowingFinalStep
		c.stepTimer = time.AfterFunc(c.timings.FinalStep, func() {
			c.showFinal(session)
		})
	}
}

// Cancel preempts the active session without finalizing it.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.session++
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// VisibleCount returns how many steps the active session has shown.
func (c *Controller) VisibleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *Controller) resetLocked() {
	if c.stepTimer != nil {
		c.stepTimer.Stop()
		c.stepTimer = nil
	}
	if c.safetyTimer != nil {
		c.safetyTimer.Stop()
		c.safetyTimer = nil
	}
	c.state = StateIdle
	c.steps = nil
	c.visible = 0
	c.pending = nil
	c.responseReady = false
	c.completed = false
}

func (c *Controller) showNext(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.completed || c.state != StateRevealing {
		return
	}

	// Only the completion step left (single-step lists land here straight
	// away): it stays gated on the answer.
	if c.visible == len(c.steps)-1 {
		if c.responseReady {
			c.state = StateShowingFinalStep
			c.stepTimer = time.AfterFunc(c.timings.FinalStep, func() {
				c.showFinal(session)
			})
		} else {
			c.state = StateWaitingForAnswer
			c.listener.Waiting()
		}
		return
	}

	step := c.steps[c.visible]
	index := c.visible
	c.visible++
	c.listener.StepShown(index, step)

	final := len(c.steps) - 1
	switch {
	case c.visible < final:
		delay := c.timings.Step
		if c.responseReady {
			delay = c.timings.FastForward
		}
		c.stepTimer = time.AfterFunc(delay, func() {
			c.showNext(session)
		})
	case c.responseReady:
		c.state = StateShowingFinalStep
		c.stepTimer = time.AfterFunc(c.timings.FinalStep, func() {
			c.showFinal(session)
		})
	default:
		c.state = StateWaitingForAnswer
		c.listener.Waiting()
	}
}

func (c *Controller) showFinal(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.completed || c.state != StateShowingFinalStep {
		return
	}

	index := len(c.steps) - 1
	step := c.steps[index]
	c.visible = len(c.steps)
	c.listener.StepShown(index, step)

	c.stepTimer = time.AfterFunc(c.timings.Complete, func() {
		c.finalize(session)
	})
}

func (c *Controller) finalize(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.completed {
		return
	}

	c.completed = true
	c.state = StateComplete
	if c.safetyTimer != nil {
		c.safetyTimer.Stop()
	}

	answer := c.pending
	c.pending = nil
	if answer == nil {
		answer = DegradedAnswer()
	}
	c.listener.Finalized(answer)
}

// forceFinalize is the safety-timeout path: it commits whatever answer is
// pending without showing the final step, so a stalled generation call can
// never leave the session waiting forever.
func (c *Controller) forceFinalize(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.completed {
		return
	}

	c.logger.Warn("reveal safety timeout fired, force-finalizing",
		"state", c.state.String(), "visible", c.visible, "answerReady", c.responseReady)

	if c.stepTimer != nil {
		c.stepTimer.Stop()
	}

	c.completed = true
	c.state = StateComplete

	answer := c.pending
	c.pending = nil
	if answer == nil {
		answer = DegradedAnswer()
	}
	c.listener.Finalized(answer)
}

// DegradedAnswer is the placeholder committed when a session finalizes
// without a real answer.
func DegradedAnswer() *core.Answer {
	return &core.Answer{
		Text: "I'm still thinking about that one. Please try asking again in a moment.",
	}
}
