package server

import "strings"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public routes
	RouteAuth             = "/auth"
	RouteAuthSignIn       = "/auth/sign-in"
	RouteAuthSignUp       = "/auth/sign-up"
	RouteAuthSignOut      = "/auth/sign-out"
	RouteClientPortal     = "/client/{id}"
	RouteTestClientPortal = "/test-client/{id}"

	// Role-gated routes
	RoutePricing = "/pricing"
	RouteBilling = "/billing"
	RouteAdmin   = "/admin"

	// Default-protected routes
	RouteRoot       = "/{$}"
	RouteDashboard  = "/dashboard"
	RoutePortal     = "/portal/{id}"
	RouteTestPortal = "/test-portal"

	// API routes
	RouteAPIAgencySettings = "/api/agency-settings"
)

// clientPortalPrefixes are the public unauthenticated portal paths;
// pages under them never consult the backend.
var clientPortalPrefixes = []string{"/client/", "/test-client/"}

// IsClientPortalPath reports whether path is a public client-portal
// page.
func IsClientPortalPath(path string) bool {
	for _, prefix := range clientPortalPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
