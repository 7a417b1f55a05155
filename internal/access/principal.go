package access

import "github.com/ashfaq-akash/LittleLemonApi/internal/models"

// Principal is the caller's identity and capabilities, resolved once per request
type Principal struct {
	UserID    int64
	Username  string
	Email     string
	Superuser bool

	manager bool
	crew    bool
}

// NewPrincipal resolves the capabilities of u from its groups and superuser flag
func NewPrincipal(u *models.User) Principal {
	p := Principal{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Superuser: u.IsSuperuser,
	}
	for _, g := range u.Groups {
		role, ok := ParseRole(g)
		if !ok {
			continue
		}
		switch role {
		case RoleManager:
			p.manager = true
		case RoleDeliveryCrew:
			p.crew = true
		}
	}
	return p
}

// IsManager reports manager rights. Superusers are managers everywhere.
func (p Principal) IsManager() bool { return p.manager || p.Superuser }

// IsDeliveryCrew reports delivery crew rights for a caller that is not a manager
func (p Principal) IsDeliveryCrew() bool { return p.crew && !p.IsManager() }

// IsCustomer reports a caller with neither manager nor crew rights
func (p Principal) IsCustomer() bool { return !p.IsManager() && !p.crew }
