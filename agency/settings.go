// Package agency manages a tenant's branding settings: agency name,
// logo, and contact email, loaded from the creator record with
// graceful multi-level fallback to defaults.
package agency

// Default branding used whenever no tenant record applies.
const (
	DefaultAgencyName  = "TourCompanion"
	DefaultLogoPath    = "/tourcompanion-logo.png"
	DefaultContact     = "contact@youragency.com"
	fallbackAgencyName = "Your Agency"
)

// Demo branding served in offline mode.
const (
	demoAgencyName = "TourCompanion Demo"
	demoContact    = "demo@tourcompanion.com"
)

// Settings is the branding tuple the dashboard renders.
type Settings struct {
	AgencyName     string `json:"agency_name"`
	AgencyLogoPath string `json:"agency_logo"`
	ContactEmail   string `json:"contact_email"`
}

// Defaults is the branding used when no tenant record is available.
func Defaults() Settings {
	return Settings{
		AgencyName:     DefaultAgencyName,
		AgencyLogoPath: DefaultLogoPath,
		ContactEmail:   DefaultContact,
	}
}

// PublicPortalDefaults is the branding for public client-portal pages,
// which never consult the tenant store.
func PublicPortalDefaults() Settings {
	return Defaults()
}

// DemoSettings is the branding served in offline mode.
func DemoSettings() Settings {
	return Settings{
		AgencyName:     demoAgencyName,
		AgencyLogoPath: DefaultLogoPath,
		ContactEmail:   demoContact,
	}
}

// Partial is a sparse settings update; nil fields are left unchanged.
type Partial struct {
	AgencyName     *string `json:"agency_name,omitempty"`
	AgencyLogoPath *string `json:"agency_logo,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
}
