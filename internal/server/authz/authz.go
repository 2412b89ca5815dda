// Package authz answers permission questions about users.
//
// Permissions are strings of the form "<module>.<action>", for example
// "users.change_user". A module check asks whether the user holds any
// permission under that module.
package authz

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type Authorizer interface {
	HasPerm(ctx context.Context, user *models.User, perm string) (bool, error)
	HasModulePerms(ctx context.Context, user *models.User, module string) (bool, error)
}

// RoleResolver loads the role a user is assigned to.
type RoleResolver interface {
	RoleOf(ctx context.Context, user *models.User) (*models.Role, error)
}

// BlanketAuthorizer grants every permission to every active account.
type BlanketAuthorizer struct{}

func (BlanketAuthorizer) HasPerm(_ context.Context, user *models.User, _ string) (bool, error) {
	return user != nil && user.IsActive, nil
}

func (BlanketAuthorizer) HasModulePerms(_ context.Context, user *models.User, _ string) (bool, error) {
	return user != nil && user.IsActive, nil
}

// RoleAuthorizer grants permissions by role name. Superusers and the Admin
// role hold everything; UnVerified and unknown roles hold nothing.
type RoleAuthorizer struct {
	roles RoleResolver
	perms map[string][]string
}

func NewRoleAuthorizer(roles RoleResolver, perms map[string][]string) *RoleAuthorizer {
	cp := make(map[string][]string, len(perms))
	for role, list := range perms {
		cp[role] = append([]string(nil), list...)
	}
	return &RoleAuthorizer{roles: roles, perms: cp}
}

func (a *RoleAuthorizer) HasPerm(ctx context.Context, user *models.User, perm string) (bool, error) {
	return a.check(ctx, user, func(p string) bool { return p == perm })
}

func (a *RoleAuthorizer) HasModulePerms(ctx context.Context, user *models.User, module string) (bool, error) {
	prefix := module + "."
	return a.check(ctx, user, func(p string) bool { return strings.HasPrefix(p, prefix) })
}

func (a *RoleAuthorizer) check(ctx context.Context, user *models.User, match func(string) bool) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}

	role, err := a.roles.RoleOf(ctx, user)
	if err != nil {
		return false, err
	}

	switch role.Name {
	case models.RoleAdmin:
		return true, nil
	case models.RoleUnVerified:
		return false, nil
	}

	for _, p := range a.perms[role.Name] {
		if match(p) {
			return true, nil
		}
	}
	return false, nil
}

// PermissionsFor returns a copy of the permissions configured for a role.
func (a *RoleAuthorizer) PermissionsFor(role string) []string {
	perms := a.perms[role]
	if perms == nil {
		return nil
	}
	return append([]string(nil), perms...)
}
