package entities

import (
	"time"

	domainerrors "mystic/contexts/identity-access/access-control/domain/errors"
)

// Role is a closed capability enumeration. Role checks match on these values
// exhaustively; caller-supplied strings never reach a membership lookup
// without passing ParseRole first.
type Role string

const (
	// RoleAdmin manages role membership and marketplace fee configuration.
	RoleAdmin Role = "admin"
	// RoleOperator mints assets, signs off-channel authorizations, and
	// performs direct payment withdrawals.
	RoleOperator Role = "operator"
)

// ParseRole validates an external role string against the enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOperator:
		return RoleOperator, nil
	default:
		return "", domainerrors.ErrUnknownRole
	}
}

// Grant is an active (role, account) membership row.
type Grant struct {
	Role      Role
	Account   string
	GrantedBy string
	GrantedAt time.Time
}
