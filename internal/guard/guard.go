// Package guard implements the per-navigation access guard: a small state
// machine that decides, for the current identity and path, whether to render
// the page, redirect, show a loading affordance, or deny in place. The
// guard is pure decision logic; the httpx layer turns decisions into HTTP
// effects.
package guard

import (
	"net/url"

	"github.com/vendora/marketplace-ui-api/internal/domain/identity"
	"github.com/vendora/marketplace-ui-api/internal/policy"
)

// DecisionKind enumerates the guard's possible outcomes.
type DecisionKind int

const (
	// Loading means session resolution has not settled; render a neutral
	// loading affordance and nothing protected.
	Loading DecisionKind = iota
	// Allow renders the requested page.
	Allow
	// Redirect navigates to Target. At most one navigation is issued per
	// attempt; see Attempt.
	Redirect
	// Denied renders a fixed access-denied message in place of the page,
	// without navigating. Used for permission edges inside an otherwise
	// allowed route prefix to avoid redirect thrashing.
	Denied
)

// Redirect reasons, attached to decisions for logging and tests.
const (
	ReasonUnauthenticated   = "unauthenticated"
	ReasonRoleMismatch      = "role_mismatch"
	ReasonMissingPermission = "missing_permission"
	ReasonResolutionFailure = "resolution_failure"
)

// Decision is the ephemeral result of one evaluation. It is recomputed on
// every relevant state change and never persisted.
type Decision struct {
	Kind   DecisionKind
	Target string
	Reason string
}

// Input carries the state one evaluation runs against.
type Input struct {
	Identity  identity.Identity
	IsLoading bool
	Path      string
}

// Guard evaluates route policy against resolved identities. It holds only
// the static policy table and is safe for concurrent use.
type Guard struct {
	policies *policy.Table
}

// New creates a guard over the given policy table.
func New(policies *policy.Table) *Guard {
	return &Guard{policies: policies}
}

// Evaluate runs one guard evaluation. Any panic inside policy lookup or
// identity handling is treated as denied-with-anonymous: the guard fails
// closed, never open.
func (g *Guard) Evaluate(in Input) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = Decision{Kind: Denied, Reason: ReasonResolutionFailure}
		}
	}()

	if in.IsLoading {
		return Decision{Kind: Loading}
	}

	req := g.policies.Match(in.Path)
	if req.Satisfies(in.Identity) {
		return Decision{Kind: Allow}
	}

	return g.deny(req, in)
}

// EvaluateInPlace is Evaluate for sub-pages within an already-allowed route
// prefix: permission mismatches become an in-place Denied render instead of
// a redirect, so permission edges that differ page-to-page don't thrash the
// browser between pages. All other outcomes are unchanged.
func (g *Guard) EvaluateInPlace(in Input) Decision {
	d := g.Evaluate(in)
	if d.Kind == Redirect && d.Reason == ReasonMissingPermission {
		return Decision{Kind: Denied, Reason: ReasonMissingPermission}
	}
	return d
}

// deny computes the redirect for an identity that failed the requirement.
func (g *Guard) deny(req policy.Requirement, in Input) Decision {
	if !in.Identity.IsAuthenticated() {
		return Decision{
			Kind:   Redirect,
			Target: identity.LoginPath + "?returnUrl=" + url.QueryEscape(in.Path),
			Reason: ReasonUnauthenticated,
		}
	}

	// Authenticated staff that fail a permission rule (including staff
	// with no assigned sub-role) stay inside the seller dashboard; they
	// are under-privileged, not logged out.
	if req.Kind == policy.PermissionRestricted {
		return Decision{
			Kind:   Redirect,
			Target: identity.SellerHome,
			Reason: ReasonMissingPermission,
		}
	}

	// Wrong top-level role: send the actor to its own canonical home.
	return Decision{
		Kind:   Redirect,
		Target: in.Identity.HomePath(),
		Reason: ReasonRoleMismatch,
	}
}
