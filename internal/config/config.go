package config

type Config interface {
	EnvConfig
	BackendConfig
	GuardConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

// BackendConfig describes how to reach the hosted auth provider.
// Offline mode replaces the provider entirely when it reports true.
type BackendConfig interface {
	GetBackendURL() string
	GetBackendClientID() string
	GetBackendClientSecret() string
	OfflineMode() bool
}

// GuardConfig selects the role-check strategy for protected routes.
type GuardConfig interface {
	GetRoleCheckStrategy() string
}

type mainConfig struct {
	EnvVars
	Backend
	Guard
}

func New() Config {
	return mainConfig{}
}
