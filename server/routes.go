package server

import "github.com/tourcompanion/portal-server/guard"

func (s *Server) initRoutes() {
	// Public auth surface
	s.RegisterRouteHandler("GET "+RouteAuth, ChainMiddleware(s.AuthPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignIn, ChainMiddleware(s.SignInHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignUp, ChainMiddleware(s.SignUpHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleware()...))

	// Public client portal (no auth, no tenant lookup)
	s.RegisterRouteHandler("GET "+RouteClientPortal, ChainMiddleware(s.ClientPortalHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteTestClientPortal, ChainMiddleware(s.ClientPortalHandler(), s.HTMLMiddleware()...))

	// Role-gated routes
	s.RegisterRouteHandler("GET "+RoutePricing, ChainMiddleware(s.PricingHandler(), s.HTMLMiddleware(s.GuardRoute(guard.RoleCreator))...))
	s.RegisterRouteHandler("GET "+RouteBilling, ChainMiddleware(s.BillingHandler(), s.HTMLMiddleware(s.GuardRoute(guard.RoleCreator))...))
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminHandler(), s.HTMLMiddleware(s.GuardRoute(guard.RoleAdmin))...))

	// Default-protected routes (any authenticated user)
	s.RegisterRouteHandler("GET "+RouteRoot, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.GuardRoute(""))...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.GuardRoute(""))...))
	s.RegisterRouteHandler("GET "+RoutePortal, ChainMiddleware(s.PortalHandler(), s.HTMLMiddleware(s.GuardRoute(""))...))
	s.RegisterRouteHandler("GET "+RouteTestPortal, ChainMiddleware(s.PortalHandler(), s.HTMLMiddleware(s.GuardRoute(""))...))

	// Agency settings API
	s.RegisterRouteHandler("GET "+RouteAPIAgencySettings, ChainMiddleware(s.AgencySettingsGetHandler(), s.APIMiddleware(s.GuardRoute(""))...))
	s.RegisterRouteHandler("PUT "+RouteAPIAgencySettings, ChainMiddleware(s.AgencySettingsUpdateHandler(), s.APIMiddleware(s.GuardRoute(""))...))

	// Catch-all 404
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleware()...))
}
