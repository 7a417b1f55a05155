package access

import "strings"

// Role is a canonical group name
type Role string

const (
	RoleManager      Role = "manager"
	RoleDeliveryCrew Role = "delivery-crew"
)

// Roles lists every group the API knows about
var Roles = []Role{RoleManager, RoleDeliveryCrew}

// ParseRole maps any casing and any of the separators space, underscore
// or hyphen onto the canonical role. ok is false for unknown names.
func ParseRole(name string) (role Role, ok bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)
	for _, r := range Roles {
		if string(r) == normalized {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }
