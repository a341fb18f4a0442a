package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendora/marketplace-ui-api/internal/domain/identity"
	"github.com/vendora/marketplace-ui-api/internal/policy"
)

func newTestGuard() *Guard {
	return New(policy.Default())
}

func TestEvaluate_LoadingShortCircuits(t *testing.T) {
	g := newTestGuard()
	d := g.Evaluate(Input{Identity: identity.Anonymous(), IsLoading: true, Path: "/dashboard/seller"})
	assert.Equal(t, Loading, d.Kind)
}

func TestEvaluate_AnonymousOnProtectedPath_RedirectsToLogin(t *testing.T) {
	g := newTestGuard()
	d := g.Evaluate(Input{Identity: identity.Anonymous(), Path: "/dashboard/seller/orders"})

	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, "/auth/login?returnUrl=%2Fdashboard%2Fseller%2Forders", d.Target)
	assert.Equal(t, ReasonUnauthenticated, d.Reason)
}

func TestEvaluate_AnonymousOnPublicPath_Allows(t *testing.T) {
	g := newTestGuard()
	d := g.Evaluate(Input{Identity: identity.Anonymous(), Path: "/products/42"})
	assert.Equal(t, Allow, d.Kind)
}

func TestEvaluate_RoleMismatch_RedirectsHome(t *testing.T) {
	g := newTestGuard()

	// A seller probing the admin dashboard lands back on its own home.
	d := g.Evaluate(Input{Identity: identity.Seller(), Path: "/dashboard/admin"})
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, identity.SellerHome, d.Target)
	assert.Equal(t, ReasonRoleMismatch, d.Reason)

	// A buyer probing the seller dashboard lands on the buyer home.
	d = g.Evaluate(Input{Identity: identity.Buyer(), Path: "/dashboard/seller"})
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, identity.BuyerHome, d.Target)
}

func TestEvaluate_StaffPermissions(t *testing.T) {
	g := newTestGuard()
	dispatcher := identity.Staff(identity.PermDispatcher)

	// Dispatcher can work orders.
	d := g.Evaluate(Input{Identity: dispatcher, Path: "/dashboard/seller/orders"})
	assert.Equal(t, Allow, d.Kind)

	// But not payouts: that page needs FINANCE_VIEW. The redirect stays
	// inside the seller dashboard.
	d = g.Evaluate(Input{Identity: dispatcher, Path: "/dashboard/seller/payouts"})
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, identity.SellerHome, d.Target)
	assert.Equal(t, ReasonMissingPermission, d.Reason)
}

func TestEvaluate_UnassignedStaff(t *testing.T) {
	g := newTestGuard()
	unassigned := identity.Staff("NOT_A_ROLE")

	// Unassigned staff can enter the seller dashboard shell.
	d := g.Evaluate(Input{Identity: unassigned, Path: "/dashboard/seller"})
	assert.Equal(t, Allow, d.Kind)

	// But every permission-gated page sends them back to the shell.
	for _, path := range []string{
		"/dashboard/seller/inventory",
		"/dashboard/seller/orders",
		"/dashboard/seller/payouts",
		"/dashboard/seller/settings",
	} {
		d = g.Evaluate(Input{Identity: unassigned, Path: path})
		assert.Equal(t, Redirect, d.Kind, path)
		assert.Equal(t, identity.SellerHome, d.Target, path)
		assert.Equal(t, ReasonMissingPermission, d.Reason, path)
	}
}

func TestEvaluate_SellerHasFullDashboardAccess(t *testing.T) {
	g := newTestGuard()
	for _, path := range []string{
		"/dashboard/seller",
		"/dashboard/seller/inventory",
		"/dashboard/seller/orders",
		"/dashboard/seller/payouts",
		"/dashboard/seller/reports",
		"/dashboard/seller/settings",
	} {
		d := g.Evaluate(Input{Identity: identity.Seller(), Path: path})
		assert.Equal(t, Allow, d.Kind, path)
	}
}

func TestEvaluate_PanicFailsClosed(t *testing.T) {
	// A nil policy table makes Match panic; the guard must deny, not crash
	// and not allow.
	g := New(nil)
	d := g.Evaluate(Input{Identity: identity.Admin(), Path: "/dashboard/admin"})
	assert.Equal(t, Denied, d.Kind)
	assert.Equal(t, ReasonResolutionFailure, d.Reason)
}

func TestEvaluateInPlace_PermissionMismatchDeniesInPlace(t *testing.T) {
	g := newTestGuard()
	d := g.EvaluateInPlace(Input{
		Identity: identity.Staff(identity.PermDispatcher),
		Path:     "/dashboard/seller/payouts",
	})
	assert.Equal(t, Denied, d.Kind)
	assert.Equal(t, ReasonMissingPermission, d.Reason)
	assert.Empty(t, d.Target, "in-place denial must not navigate")
}

func TestEvaluateInPlace_OtherOutcomesUnchanged(t *testing.T) {
	g := newTestGuard()

	d := g.EvaluateInPlace(Input{Identity: identity.Seller(), Path: "/dashboard/seller/orders"})
	assert.Equal(t, Allow, d.Kind)

	d = g.EvaluateInPlace(Input{Identity: identity.Anonymous(), Path: "/dashboard/seller/orders"})
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, ReasonUnauthenticated, d.Reason)
}
