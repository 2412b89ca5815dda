package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, name, wechat, avatar, job_title, is_active, is_staff, is_superuser, role_id, reg_time, password, last_login`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO "user" (id, email, name, wechat, avatar, job_title, is_active, is_staff, is_superuser, role_id, password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING reg_time`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.WeChat, user.Avatar, user.JobTitle,
		user.IsActive, user.IsStaff, user.IsSuperuser, user.RoleID, user.Password,
	).Scan(&user.RegTime)
	if err != nil {
		return nil, dbx.WrapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE "user"
		 SET email = $2, name = $3, wechat = $4, avatar = $5, job_title = $6,
		     is_active = $7, is_staff = $8, is_superuser = $9, role_id = $10,
		     password = $11, last_login = $12
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.WeChat, user.Avatar, user.JobTitle,
		user.IsActive, user.IsStaff, user.IsSuperuser, user.RoleID,
		user.Password, user.LastLogin,
	)
	if err != nil {
		return dbx.WrapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbx.WrapError(err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, dbx.WrapError(sql.ErrNoRows))
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u         models.User
		avatar    sql.NullString
		lastLogin sql.NullTime
	)

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.WeChat, &avatar, &u.JobTitle,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.RoleID, &u.RegTime,
		&u.Password, &lastLogin)
	if err != nil {
		return nil, dbx.WrapError(err)
	}

	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}
