package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
)

const maxRoleNameLen = 100

type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *RoleService {
	return &RoleService{db: db, repomanager: m, log: log.With("module", "roles")}
}

func (s *RoleService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxRoleNameLen {
		return nil, fmt.Errorf("%w: role name must be 1..%d characters", common.ErrorValidation, maxRoleNameLen)
	}

	r, err := s.repomanager.Roles(s.db).Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error creating role: %w", err)
	}
	s.log.Info(ctx, "role created", "role", r.Name)
	return r, nil
}

func (s *RoleService) GetRole(ctx context.Context, name string) (*models.Role, error) {
	return s.repomanager.Roles(s.db).GetByName(ctx, name)
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.repomanager.Roles(s.db).List(ctx)
}
