package guard

import "sync/atomic"

// Attempt tracks one navigation attempt. The guard may be re-evaluated
// several times while a redirect is still pending (a session store write
// arriving between render passes, a rapid re-render); the attempt's
// single-use acted flag guarantees the navigation effect fires at most
// once. The flag is set before the effect runs, so a re-entrant evaluation
// racing the first one observes it already set.
type Attempt struct {
	acted atomic.Bool
}

// NewAttempt creates an attempt that has not yet acted.
func NewAttempt() *Attempt { return &Attempt{} }

// Act runs fn if and only if this attempt has not acted before. It returns
// whether fn ran.
func (a *Attempt) Act(fn func()) bool {
	if !a.acted.CompareAndSwap(false, true) {
		return false
	}
	fn()
	return true
}

// Acted reports whether the attempt's navigation effect has been issued.
func (a *Attempt) Acted() bool { return a.acted.Load() }

// Outcome is the guard's outward effect surface: exactly one of these is
// invoked per evaluation. The httpx layer implements it over a response
// writer; tests implement it with recorders.
type Outcome interface {
	NavigateTo(target string)
	RenderLoading()
	RenderDenied()
	RenderChildren()
}

// Apply maps a decision onto an outcome sink, routing navigation through
// the attempt so repeated applications of a Redirect decision issue at most
// one NavigateTo.
func Apply(d Decision, attempt *Attempt, out Outcome) {
	switch d.Kind {
	case Loading:
		out.RenderLoading()
	case Allow:
		out.RenderChildren()
	case Denied:
		out.RenderDenied()
	case Redirect:
		attempt.Act(func() { out.NavigateTo(d.Target) })
	}
}
