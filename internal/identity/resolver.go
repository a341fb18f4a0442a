// Package identity resolves raw session state into a typed Identity. The
// resolver is a pure function of session contents: any network-backed
// profile fetch is the responsibility of the auth service, which populates
// the cached profile before resolution.
package identity

import (
	"encoding/json"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainidentity "github.com/vendora/marketplace-ui-api/internal/domain/identity"
	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
)

// Profile field expressions. The profile blob is backend-defined; some
// responses nest the user record, some inline it, so each expression
// falls back across the known shapes.
const (
	userTypeExpr    = "user.userType || userType"
	staffRoleExpr   = "user.staffRole || staffRole"
	primaryRoleExpr = "user.role || role"
)

// Resolve derives the actor classification from session contents. It never
// performs I/O and never panics outward: an empty session resolves to
// Anonymous, and a session with a token but an unreadable profile resolves
// to the least-privileged authenticated kind.
func Resolve(sess domainsession.Session) domainidentity.Identity {
	if sess.IsEmpty() {
		return domainidentity.Anonymous()
	}

	profile, ok := decodeProfile(sess.Profile)
	if !ok {
		// Token present but unreadable profile: a valid login whose cached
		// payload is unusable. Fall through to the default-authenticated
		// rule with no markers rather than logging the user out.
		return domainidentity.Buyer()
	}

	switch strings.ToLower(searchString(userTypeExpr, profile)) {
	case "seller":
		return domainidentity.Seller()
	case "staff":
		subRole := domainidentity.Permission(strings.ToUpper(searchString(staffRoleExpr, profile)))
		return domainidentity.Staff(subRole)
	}

	// No seller/staff marker: fall back to the primary-role field. Absent
	// or unrecognized values default to Buyer, mirroring the ambiguous
	// login states the backend can produce.
	if strings.EqualFold(searchString(primaryRoleExpr, profile), "admin") {
		return domainidentity.Admin()
	}
	return domainidentity.Buyer()
}

// decodeProfile unmarshals the opaque profile blob for jmespath evaluation.
func decodeProfile(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return data, true
}

// searchString evaluates a jmespath expression and returns the result as a
// string, or "" when the expression errors or yields a non-string.
func searchString(expr string, data any) string {
	result, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	s, ok := result.(string)
	if !ok {
		return ""
	}
	return s
}
