package tokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) error {
	query := `
		INSERT INTO token (user_id, token, c_time, e_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, token.UserID, token.Token, token.CTime, token.ETime).Scan(&token.ID)
	if err != nil {
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, value string) (*models.Token, error) {
	query := `
		SELECT id, user_id, token, c_time, e_time
		FROM token
		WHERE token = $1
	`
	t := &models.Token{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(&t.ID, &t.UserID, &t.Token, &t.CTime, &t.ETime)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Token, error) {
	query := `
		SELECT id, user_id, token, c_time, e_time
		FROM token
		WHERE user_id = $1
		ORDER BY c_time DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.Token
	for rows.Next() {
		t := &models.Token{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.CTime, &t.ETime); err != nil {
			return nil, dbx.WrapError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}
