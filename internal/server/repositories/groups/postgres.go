package groups

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Group, error) {
	query :=
		`INSERT INTO "group" (name)
		 VALUES ($1)
		 RETURNING id, c_time`

	g := &models.Group{Name: name}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&g.ID, &g.CreatedAt); err != nil {
		return nil, dbx.WrapError(err)
	}
	return g, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	query := `SELECT id, name, c_time FROM "group" WHERE name = $1`

	g := &models.Group{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
		return nil, dbx.WrapError(err)
	}
	return g, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, userID string, groupID int64) (*models.UserGroup, error) {
	query :=
		`INSERT INTO user_group (user_id, group_id)
		 VALUES ($1, $2)
		 RETURNING id`

	ug := &models.UserGroup{UserID: userID, GroupID: groupID}
	if err := r.db.QueryRowContext(ctx, query, userID, groupID).Scan(&ug.ID); err != nil {
		return nil, dbx.WrapError(err)
	}
	return ug, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	query :=
		`SELECT g.id, g.name, g.c_time
		 FROM "group" g
		 JOIN user_group ug ON ug.group_id = g.id
		 WHERE ug.user_id = $1
		 ORDER BY g.name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, dbx.WrapError(err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, groupID int64) ([]*models.User, error) {
	query :=
		`SELECT u.id, u.email, u.name, u.wechat, u.avatar, u.job_title, u.is_active,
		        u.is_staff, u.is_superuser, u.role_id, u.reg_time
		 FROM "user" u
		 JOIN user_group ug ON ug.user_id = u.id
		 WHERE ug.group_id = $1
		 ORDER BY u.email`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		var (
			u      models.User
			avatar sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.WeChat, &avatar, &u.JobTitle, &u.IsActive,
			&u.IsStaff, &u.IsSuperuser, &u.RoleID, &u.RegTime); err != nil {
			return nil, dbx.WrapError(err)
		}
		if avatar.Valid {
			u.Avatar = &avatar.String
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}
