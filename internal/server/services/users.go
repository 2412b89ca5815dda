// Package services contains the identity store's business logic. Each
// service owns a *sql.DB and a RepositoryManager and runs multi-write
// operations inside dbx.WithTx.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/cryptox"
	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   *cryptox.Passwords
	log         logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, passwords *cryptox.Passwords, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		log:         log.With("module", "users"),
		now:         time.Now,
	}
}

// normalizeEmail trims surrounding space and lower-cases the domain part.
// The local part is kept as typed.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser creates an active, staff, non-superuser account assigned to the
// UnVerified role.
func (s *UserService) CreateUser(ctx context.Context, email, name, wechat, password string) (*models.User, error) {
	u, err := s.createUser(ctx, s.db, email, name, wechat, password)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// CreateSuperuser creates the account through the same path as CreateUser,
// then promotes it to superuser under the Admin role. Both writes commit or
// roll back together.
func (s *UserService) CreateSuperuser(ctx context.Context, email, name, wechat, password string) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.createUser(ctx, tx, email, name, wechat, password)
		if err != nil {
			return err
		}

		admin, err := s.repomanager.Roles(tx).GetByName(ctx, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("role %s: %w", models.RoleAdmin, err)
		}

		u.IsSuperuser = true
		u.IsStaff = true
		u.RoleID = admin.ID

		if err := s.repomanager.Users(tx).Update(ctx, u); err != nil {
			return fmt.Errorf("error promoting user: %w", err)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "superuser created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *UserService) createUser(ctx context.Context, db dbx.DBTX, email, name, wechat, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: users must have an email address", common.ErrorValidation)
	}

	role, err := s.repomanager.Roles(db).GetByName(ctx, models.RoleUnVerified)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", models.RoleUnVerified, err)
	}

	u := models.NewUser(email, name, wechat, role.ID)
	if err := u.SetPassword(s.passwords, password); err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	created, err := s.repomanager.Users(db).Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Authenticate checks email and password of an active account. Unknown
// email, wrong password and inactive accounts all yield ErrorUnauthorized.
// On success LastLogin is recorded and a stale hash is replaced.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	ok, err := u.CheckPassword(s.passwords, password)
	if err != nil {
		s.log.Error(ctx, "stored password is malformed", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrorInactiveUser)
	}

	if s.passwords.NeedsRehash(u.Password) {
		if err := u.SetPassword(s.passwords, password); err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		s.log.Info(ctx, "password hash upgraded", "user_id", u.ID)
	}

	now := s.now()
	u.LastLogin = &now
	if err := repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password of an existing user.
func (s *UserService) ChangePassword(ctx context.Context, userID, password string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := u.SetPassword(s.passwords, password); err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}
		return repo.Update(ctx, u)
	})
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Save persists every mutable field of u.
func (s *UserService) Save(ctx context.Context, u *models.User) error {
	if !u.JobTitle.Valid() {
		return fmt.Errorf("%w: unknown job title %d", common.ErrorValidation, u.JobTitle)
	}
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return fmt.Errorf("%w: users must have an email address", common.ErrorValidation)
	}
	return s.repomanager.Users(s.db).Update(ctx, u)
}

// RoleOf loads the role u is assigned to.
func (s *UserService) RoleOf(ctx context.Context, u *models.User) (*models.Role, error) {
	return s.repomanager.Roles(s.db).GetByID(ctx, u.RoleID)
}
