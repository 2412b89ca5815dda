package roles

import (
	"context"

	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Role, error) {
	query :=
		`INSERT INTO role (name)
		 VALUES ($1)
		 RETURNING id, c_time`

	role := &models.Role{Name: name}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.CreatedAt); err != nil {
		return nil, dbx.WrapError(err)
	}
	return role, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, name, c_time FROM role WHERE name = $1`

	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
		return nil, dbx.WrapError(err)
	}
	return role, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	query := `SELECT id, name, c_time FROM role WHERE id = $1`

	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
		return nil, dbx.WrapError(err)
	}
	return role, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, c_time FROM role ORDER BY id`)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, dbx.WrapError(err)
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}
