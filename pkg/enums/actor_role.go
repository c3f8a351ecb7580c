package enums

import "fmt"

// ActorRole is the gateway-issued role carried in the access token.
type ActorRole string

const (
	RoleAdmin           ActorRole = "admin"
	RoleAccountant      ActorRole = "accountant"
	RolePropertyManager ActorRole = "property_manager"
	RoleViewer          ActorRole = "viewer"
)

var validActorRoles = []ActorRole{
	RoleAdmin,
	RoleAccountant,
	RolePropertyManager,
	RoleViewer,
}

func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanMutatePDC reports whether the role may drive cheque lifecycle changes.
func (r ActorRole) CanMutatePDC() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RolePropertyManager:
		return true
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
