package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equipment-store/internal/entities"
)

func TestGatekeeperCan(t *testing.T) {
	g := NewGatekeeper()
	admin := NewPrincipal(1, true)
	bob := NewPrincipal(2, false)

	tests := []struct {
		name       string
		principal  *Principal
		permission string
		target     interface{}
		want       bool
	}{
		{"superuser creates users", admin, UsersCreate, nil, true},
		{"superuser deletes anyone", admin, UsersDelete, uint64(7), true},
		{"user views store", bob, StoreView, nil, true},
		{"user manages store", bob, StoreManage, nil, true},
		{"user cannot create users", bob, UsersCreate, nil, false},
		{"user updates self by id", bob, UsersUpdate, uint64(2), true},
		{"user updates self by entity", bob, UsersUpdate, &entities.User{ID: 2}, true},
		{"user cannot update others", bob, UsersUpdate, uint64(3), false},
		{"user deletes self", bob, UsersDelete, uint64(2), true},
		{"user cannot delete others", bob, UsersDelete, &entities.User{ID: 1}, false},
		{"anonymous", nil, StoreView, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Can(tt.principal, tt.permission, tt.target))
		})
	}
}

func TestPermissionsFor(t *testing.T) {
	perms := PermissionsFor(false)
	assert.True(t, perms[StoreView])
	assert.False(t, perms[Superuser])

	perms = PermissionsFor(true)
	assert.True(t, perms[Superuser])
	assert.True(t, perms[UsersCreate])
}
