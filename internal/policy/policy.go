// Package policy holds the route policy table: a static, ordered mapping
// from route patterns to access requirements. Policies are loaded once at
// startup and never mutated at runtime; every guard evaluation is a lookup
// here, not a fresh branch.
package policy

import (
	"sort"
	"strings"

	"github.com/vendora/marketplace-ui-api/internal/domain/identity"
)

// RequirementKind discriminates the access requirement of a rule.
type RequirementKind int

const (
	// Public routes are reachable by anyone, including anonymous actors.
	Public RequirementKind = iota
	// AuthenticatedAny requires any logged-in identity.
	AuthenticatedAny
	// RoleRestricted requires one of the listed top-level identity kinds.
	RoleRestricted
	// PermissionRestricted requires a staff sub-role from the listed
	// permission set (sellers implicitly qualify).
	PermissionRestricted
)

// Requirement is the access requirement attached to a route pattern.
type Requirement struct {
	Kind        RequirementKind
	Roles       []identity.Kind
	Permissions []identity.Permission
}

// Rule binds a path pattern to a requirement. A pattern matches its exact
// path and any path beneath it ("/dashboard/seller" matches
// "/dashboard/seller/orders").
type Rule struct {
	Pattern     string
	Requirement Requirement
}

// Table is an ordered policy set. Invariant: exactly one rule matches any
// concrete path; Match resolves overlaps most-specific-first and falls back
// to AuthenticatedAny for unmatched dashboard-prefixed paths and Public for
// everything else.
type Table struct {
	rules []Rule
}

// New builds a table from the given rules, ordering them longest-pattern
// first so the most specific rule wins.
func New(rules []Rule) *Table {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Pattern) > len(ordered[j].Pattern)
	})
	return &Table{rules: ordered}
}

// Match returns the requirement governing the given path.
func (t *Table) Match(path string) Requirement {
	path = normalize(path)
	for _, rule := range t.rules {
		if matches(rule.Pattern, path) {
			return rule.Requirement
		}
	}
	if strings.HasPrefix(path, "/dashboard/") || path == "/dashboard" {
		return Requirement{Kind: AuthenticatedAny}
	}
	return Requirement{Kind: Public}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func matches(pattern, path string) bool {
	return path == pattern || strings.HasPrefix(path, pattern+"/")
}

// Satisfies reports whether the identity meets the requirement.
func (r Requirement) Satisfies(id identity.Identity) bool {
	switch r.Kind {
	case Public:
		return true
	case AuthenticatedAny:
		return id.IsAuthenticated()
	case RoleRestricted:
		if !id.IsAuthenticated() {
			return false
		}
		for _, role := range r.Roles {
			if id.Kind == role {
				return true
			}
			// Staff work inside the seller dashboard; a seller-role rule
			// admits them, with per-page permission rules layered on top.
			if role == identity.KindSeller && id.Kind == identity.KindStaff {
				return true
			}
		}
		return false
	case PermissionRestricted:
		if !id.IsAuthenticated() {
			return false
		}
		return id.HasPermission(r.Permissions)
	default:
		return false
	}
}

// Default returns the marketplace route policy table.
func Default() *Table {
	return New([]Rule{
		{Pattern: "/", Requirement: Requirement{Kind: Public}},
		{Pattern: "/products", Requirement: Requirement{Kind: Public}},
		{Pattern: "/auth", Requirement: Requirement{Kind: Public}},

		{Pattern: "/checkout", Requirement: Requirement{Kind: AuthenticatedAny}},
		{Pattern: "/account", Requirement: Requirement{Kind: AuthenticatedAny}},

		{Pattern: "/dashboard/buyer", Requirement: Requirement{
			Kind:  RoleRestricted,
			Roles: []identity.Kind{identity.KindBuyer},
		}},
		{Pattern: "/dashboard/admin", Requirement: Requirement{
			Kind:  RoleRestricted,
			Roles: []identity.Kind{identity.KindAdmin},
		}},
		{Pattern: "/dashboard/seller", Requirement: Requirement{
			Kind:  RoleRestricted,
			Roles: []identity.Kind{identity.KindSeller},
		}},

		// Staff sub-role boundaries inside the seller dashboard.
		{Pattern: "/dashboard/seller/inventory", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermStockManager, identity.PermFullAccess},
		}},
		{Pattern: "/dashboard/seller/orders", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermDispatcher, identity.PermFullAccess},
		}},
		{Pattern: "/dashboard/seller/returns", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermDispatcher, identity.PermFullAccess},
		}},
		{Pattern: "/dashboard/seller/payouts", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermFinanceView, identity.PermFullAccess},
		}},
		{Pattern: "/dashboard/seller/reports", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermFinanceView, identity.PermFullAccess},
		}},
		{Pattern: "/dashboard/seller/settings", Requirement: Requirement{
			Kind:        PermissionRestricted,
			Permissions: []identity.Permission{identity.PermFullAccess},
		}},
	})
}
