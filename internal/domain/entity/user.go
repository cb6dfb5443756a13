package entity

// Roles válidos del personal.
const (
	RoleAdmin      = "admin"
	RoleMedico     = "medico"
	RoleEnfermera  = "enfermera"
	RoleSecretaria = "secretaria"
)

// IsValidRole indica si el rol es uno de los conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMedico, RoleEnfermera, RoleSecretaria:
		return true
	}
	return false
}

// Actor quien ejecuta una operación. Se pasa explícitamente a cada caso de uso que cambia estado.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin indica si el actor tiene rol admin.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// HasRole indica si el actor tiene alguno de los roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
