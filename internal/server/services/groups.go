package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
)

const maxGroupNameLen = 80

type GroupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewGroupService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *GroupService {
	return &GroupService{db: db, repomanager: m, log: log.With("module", "groups")}
}

func (s *GroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGroupNameLen {
		return nil, fmt.Errorf("%w: group name must be 1..%d characters", common.ErrorValidation, maxGroupNameLen)
	}

	g, err := s.repomanager.Groups(s.db).Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error creating group: %w", err)
	}
	s.log.Info(ctx, "group created", "group", g.Name)
	return g, nil
}

// AddMember puts userID into the named group.
func (s *GroupService) AddMember(ctx context.Context, groupName, userID string) (*models.UserGroup, error) {
	var ug *models.UserGroup

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		g, err := s.repomanager.Groups(tx).GetByName(ctx, groupName)
		if err != nil {
			return fmt.Errorf("group %q: %w", groupName, err)
		}
		if _, err := s.repomanager.Users(tx).GetByID(ctx, userID); err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		ug, err = s.repomanager.Groups(tx).AddMember(ctx, userID, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "member added", "group", groupName, "user_id", userID)
	return ug, nil
}

func (s *GroupService) GroupsOf(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.repomanager.Groups(s.db).ListByUser(ctx, userID)
}

func (s *GroupService) MembersOf(ctx context.Context, groupName string) ([]*models.User, error) {
	repo := s.repomanager.Groups(s.db)

	g, err := repo.GetByName(ctx, groupName)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", groupName, err)
	}
	return repo.ListMembers(ctx, g.ID)
}
