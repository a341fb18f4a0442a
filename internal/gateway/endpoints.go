package gateway

import "strings"

// Endpoint describes one entry of the proxied path surface. Paths are
// forwarded 1:1 by suffix to the backend's equivalent path; the only
// gateway-side semantics is whether an Authorization header is required
// before the backend is contacted.
type Endpoint struct {
	Name         string
	PathPrefix   string
	RequiresAuth bool
}

// endpoints is the fixed browser-facing path surface. Most specific prefix
// wins; anything outside the table is not proxied.
var endpoints = []Endpoint{
	{Name: "auth", PathPrefix: "/api/auth", RequiresAuth: false},

	{Name: "dashboard_stats", PathPrefix: "/api/seller/stats", RequiresAuth: true},
	{Name: "dashboard_trends", PathPrefix: "/api/seller/trends", RequiresAuth: true},
	{Name: "inventory", PathPrefix: "/api/seller/inventory", RequiresAuth: true},
	{Name: "orders", PathPrefix: "/api/seller/orders", RequiresAuth: true},
	{Name: "coupons", PathPrefix: "/api/seller/coupons", RequiresAuth: true},
	{Name: "returns", PathPrefix: "/api/seller/returns", RequiresAuth: true},
	{Name: "payouts", PathPrefix: "/api/seller/payouts", RequiresAuth: true},
	{Name: "reports", PathPrefix: "/api/seller/reports", RequiresAuth: true},
	{Name: "settings", PathPrefix: "/api/seller/settings", RequiresAuth: true},

	{Name: "buyer_orders", PathPrefix: "/api/buyer/orders", RequiresAuth: true},
	{Name: "buyer_returns", PathPrefix: "/api/buyer/returns", RequiresAuth: true},

	{Name: "admin", PathPrefix: "/api/admin", RequiresAuth: true},

	{Name: "products", PathPrefix: "/api/products", RequiresAuth: false},
}

// Resolve returns the endpoint governing the given request path. The bool
// reports whether the path belongs to the proxied surface at all.
func Resolve(path string) (Endpoint, bool) {
	var (
		best  Endpoint
		found bool
	)
	for _, ep := range endpoints {
		if path != ep.PathPrefix && !strings.HasPrefix(path, ep.PathPrefix+"/") {
			continue
		}
		if !found || len(ep.PathPrefix) > len(best.PathPrefix) {
			best = ep
			found = true
		}
	}
	return best, found
}

// Endpoints returns a copy of the proxied path surface, for route mounting.
func Endpoints() []Endpoint {
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)
	return out
}
