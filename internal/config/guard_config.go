package config

const roleCheckStrategyVar = "ROLE_CHECK_STRATEGY"

// Role-check strategies. The vacuous strategy allows any authenticated
// user regardless of the required role; the claims strategy reads the
// role claim from the verified access token.
const (
	RoleCheckVacuous = "vacuous"
	RoleCheckClaims  = "claims"
)

type Guard struct{}

var _ GuardConfig = Guard{}

func (Guard) GetRoleCheckStrategy() string {
	return GetEnv(roleCheckStrategyVar, RoleCheckVacuous)
}
