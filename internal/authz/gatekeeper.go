package authz

import "equipment-store/internal/entities"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      uint64
	IsSuperuser bool
	Permissions map[string]bool
}

func NewPrincipal(userID uint64, isSuperuser bool) *Principal {
	return &Principal{
		UserID:      userID,
		IsSuperuser: isSuperuser,
		Permissions: PermissionsFor(isSuperuser),
	}
}

type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// Can decides whether p may perform permission on target. target is nil for
// collection-level actions, a *entities.User or a user id for account actions.
func (g *Gatekeeper) Can(p *Principal, permission string, target interface{}) bool {
	if p == nil {
		return false
	}
	if p.Permissions[Superuser] {
		return true
	}
	if p.Permissions[permission] {
		return true
	}

	// Users may update or delete their own account.
	if permission == UsersUpdate || permission == UsersDelete {
		switch t := target.(type) {
		case *entities.User:
			return t != nil && t.ID == p.UserID
		case uint64:
			return t == p.UserID
		}
	}
	return false
}
