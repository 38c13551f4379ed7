package internal

import (
	"context"
	"fmt"
	"time"
)

// FlowState is one step of the student flow. The sequence is linear:
// registration → searching → matched → chat. No backward transitions.
type FlowState string

const (
	StateRegistration FlowState = "registration"
	StateSearching    FlowState = "searching"
	StateMatched      FlowState = "matched"
	StateChat         FlowState = "chat"
)

// Matcher is the slice of the API client the flow needs.
type Matcher interface {
	RegisterStudent(ctx context.Context, student *Student) (*RegistrationResult, error)
}

// MatchFlow drives the student journey from registration to the tutor chat.
//
// The searching state stays visible for at least minDelay: the delay starts
// once the registration call resolves, so the total wait is API latency plus
// the minimum duration. A failed or empty match result never surfaces as an
// error here; it degrades to the fallback tutor and the flow continues.
type MatchFlow struct {
	api         Matcher
	minDelay    time.Duration
	celebration time.Duration

	state   FlowState
	student *Student
	match   *TutorMatch

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to FlowState)

	// Degraded is set when the match came from the fallback path. A missing
	// tutor assignment is never shown to the user as an error, only as a
	// plausible-looking match.
	Degraded bool

	// RegistrationErr records a failed registration call. Unlike a missing
	// match, this one is surfaced to the user (who sees the notice and then
	// the fallback match, mirroring the alert-then-continue behavior of the
	// web client).
	RegistrationErr error
}

// NewMatchFlow creates a flow in the registration state.
func NewMatchFlow(api Matcher, minDelay, celebration time.Duration) *MatchFlow {
	return &MatchFlow{
		api:         api,
		minDelay:    minDelay,
		celebration: celebration,
		state:       StateRegistration,
	}
}

// State returns the current flow state.
func (f *MatchFlow) State() FlowState {
	return f.state
}

// Student returns the registered student, enriched with tutor fields once
// matched.
func (f *MatchFlow) Student() *Student {
	return f.student
}

// Match returns the resolved tutor match, or nil before matching. Once set
// it never changes for the rest of the session.
func (f *MatchFlow) Match() *TutorMatch {
	return f.match
}

func (f *MatchFlow) transition(to FlowState) {
	from := f.state
	f.state = to
	LogDebug("Flow state %s -> %s", from, to)
	if f.OnTransition != nil {
		f.OnTransition(from, to)
	}
}

// Submit registers the student and resolves the tutor match. It moves the
// flow to searching immediately, holds that state for at least the minimum
// delay after the registration call resolves, then moves to matched.
//
// Only context cancellation aborts; every API failure resolves to the
// fallback tutor.
func (f *MatchFlow) Submit(ctx context.Context, student *Student) (TutorMatch, error) {
	if f.state != StateRegistration {
		return TutorMatch{}, fmt.Errorf("cannot submit registration from state %q", f.state)
	}

	f.student = student
	f.transition(StateSearching)

	match := f.resolveMatch(ctx, student)

	// Minimum visible duration for the searching state, chained after the
	// API call. Cancellable so a torn-down flow leaves no timer behind.
	if err := sleepCtx(ctx, f.minDelay); err != nil {
		return TutorMatch{}, err
	}

	f.match = &match
	f.student.TutorID = match.ID
	f.student.TutorName = match.Name
	f.transition(StateMatched)
	return match, nil
}

// resolveMatch runs the registration call and picks the success or fallback
// tutor. The rationale strings differ between the two paths.
func (f *MatchFlow) resolveMatch(ctx context.Context, student *Student) TutorMatch {
	result, err := f.api.RegisterStudent(ctx, student)
	if err != nil {
		LogWarn("Registration call failed, using fallback match: %v", err)
		f.Degraded = true
		f.RegistrationErr = err
		return FallbackMatch()
	}
	if result.TutorID == "" || result.TutorName == "" {
		LogWarn("Registration response has no tutor assignment, using fallback match")
		f.Degraded = true
		return FallbackMatch()
	}
	LogInfo("Matched with tutor %s (%s)", result.TutorName, result.TutorID)
	return MatchFromResponse(result.TutorID, result.TutorName)
}

// StartCelebration fires the one-shot celebration and schedules its
// auto-hide. The returned stop function is the disposer; it must be called
// on teardown so the timer never fires against a gone view.
func (f *MatchFlow) StartCelebration(onHide func()) (stop func()) {
	timer := time.AfterFunc(f.celebration, onHide)
	return func() { timer.Stop() }
}

// AdvanceToChat is the manual matched → chat transition (user action, no
// automatic timeout). Chat is the terminal state.
func (f *MatchFlow) AdvanceToChat() error {
	if f.state != StateMatched {
		return fmt.Errorf("cannot advance to chat from state %q", f.state)
	}
	f.transition(StateChat)
	return nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
