package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewRoleService(db, newFakeRepoManager(), logging.NewNop())
	ctx := context.Background()

	r, err := s.CreateRole(ctx, " Support ")
	require.NoError(t, err)
	assert.Equal(t, "Support", r.Name)

	_, err = s.CreateRole(ctx, models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.CreateRole(ctx, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	got, err := s.GetRole(ctx, models.RoleUnVerified)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = s.GetRole(ctx, "Nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := s.ListRoles(ctx)
	require.NoError(t, err)
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{models.RoleUnVerified, models.RoleAdmin, "Support"}, names)

	_, err = s.CreateRole(ctx, strings.Repeat("r", 101))
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.CreateRole(ctx, strings.Repeat("角", 100))
	require.NoError(t, err, "limit counts characters, not bytes")

	_, err = s.CreateRole(ctx, strings.Repeat("角", 101))
	assert.ErrorIs(t, err, common.ErrorValidation)
}
