// Package identity contains domain-level types for actor classification.
// It is pure and free of framework/adapter concerns.
package identity

// Kind represents the top-level classification of an actor.
// Keep string form for easy logging and comparison.
// Valid values are defined as constants below.
type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindBuyer     Kind = "buyer"
	KindSeller    Kind = "seller"
	KindStaff     Kind = "staff"
	KindAdmin     Kind = "admin"
)

// Permission is a fine-grained capability tag assigned to Staff identities
// beneath the Seller tier.
type Permission string

const (
	PermStockManager Permission = "STOCK_MANAGER"
	PermDispatcher   Permission = "DISPATCHER"
	PermFinanceView  Permission = "FINANCE_VIEW"
	PermFullAccess   Permission = "FULL_ACCESS"
)

// knownPermissions is the fixed permission tag set. A staff sub-role outside
// this set is treated as unassigned, never escalated.
var knownPermissions = map[Permission]bool{
	PermStockManager: true,
	PermDispatcher:   true,
	PermFinanceView:  true,
	PermFullAccess:   true,
}

// IsKnownPermission reports whether p belongs to the fixed permission tag set.
func IsKnownPermission(p Permission) bool { return knownPermissions[p] }

// Identity is the resolved actor classification used for authorization
// decisions. It is derived from session contents on every resolution and
// never persisted directly.
type Identity struct {
	Kind Kind

	// SubRole is set only for Kind == KindStaff. Staff carry exactly one
	// sub-role tag; staff with an absent or unrecognized tag have
	// Unassigned set instead.
	SubRole Permission

	// Unassigned marks a staff identity whose sub-role is absent or not in
	// the known permission set. Such identities are authenticated but
	// minimally privileged.
	Unassigned bool
}

// Anonymous is the zero-privilege identity used for unauthenticated actors
// and as the fail-closed fallback when resolution errors.
func Anonymous() Identity { return Identity{Kind: KindAnonymous} }

// Buyer returns a buyer identity.
func Buyer() Identity { return Identity{Kind: KindBuyer} }

// Seller returns a seller identity.
func Seller() Identity { return Identity{Kind: KindSeller} }

// Admin returns an admin identity.
func Admin() Identity { return Identity{Kind: KindAdmin} }

// Staff returns a staff identity carrying the given sub-role. An unknown or
// empty sub-role yields the unassigned staff variant.
func Staff(subRole Permission) Identity {
	if !IsKnownPermission(subRole) {
		return Identity{Kind: KindStaff, Unassigned: true}
	}
	return Identity{Kind: KindStaff, SubRole: subRole}
}

// IsAuthenticated reports whether the identity represents a logged-in actor.
func (i Identity) IsAuthenticated() bool { return i.Kind != KindAnonymous }

// HasPermission reports whether a staff identity satisfies the given
// permission set. Sellers implicitly hold every staff permission over their
// own dashboard; unassigned staff hold none.
func (i Identity) HasPermission(required []Permission) bool {
	switch i.Kind {
	case KindSeller:
		return true
	case KindStaff:
		if i.Unassigned {
			return false
		}
		for _, p := range required {
			if i.SubRole == p {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Canonical home routes per identity kind.
const (
	BuyerHome  = "/dashboard/buyer"
	SellerHome = "/dashboard/seller"
	AdminHome  = "/dashboard/admin"
	LoginPath  = "/auth/login"
)

// HomePath returns the identity's canonical home route. Staff share the
// seller dashboard. Unrecognized kinds default to the buyer home.
func (i Identity) HomePath() string {
	switch i.Kind {
	case KindSeller, KindStaff:
		return SellerHome
	case KindAdmin:
		return AdminHome
	default:
		return BuyerHome
	}
}
