package config

const (
	backendURLVar          = "BACKEND_URL"
	backendClientIDVar     = "BACKEND_CLIENT_ID"
	backendClientSecretVar = "BACKEND_CLIENT_SECRET"
)

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendURL() string {
	return GetEnv(backendURLVar, "")
}

func (Backend) GetBackendClientID() string {
	return GetEnv(backendClientIDVar, "tourcompanion-portal")
}

func (Backend) GetBackendClientSecret() string {
	return GetEnv(backendClientSecretVar, "")
}

// OfflineMode is active in development or whenever no backend is
// configured, so the portal always comes up with demo data instead of
// hanging on an unreachable provider.
func (b Backend) OfflineMode() bool {
	env := EnvVars{}
	if env.GetEnv() == "DEV" {
		return true
	}
	return b.GetBackendURL() == ""
}
