package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/server/auth"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/repomanager"
	"github.com/oklog/ulid/v2"
)

// TokenService issues and checks bearer tokens. Every token lives for
// models.TokenLifetime from the moment it is issued.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	log         logging.Logger
	now         func() time.Time
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, secretKey string, log logging.Logger) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		secret:      []byte(secretKey),
		log:         log.With("module", "tokens"),
		now:         time.Now,
	}
}

// Issue mints and stores a new token for userID.
func (s *TokenService) Issue(ctx context.Context, userID string) (*models.Token, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	now := s.now()
	expires := now.Add(models.TokenLifetime)

	value, err := auth.GenerateToken(userID, ulid.Make().String(), s.secret, now, expires)
	if err != nil {
		return nil, common.ErrorInternal
	}

	token := models.NewToken(userID, value, now)
	if err := s.repomanager.Tokens(s.db).Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error storing token: %w", err)
	}

	s.log.Info(ctx, "token issued", "user_id", userID, "token_id", token.ID, "expires", token.ExpiresAt())
	return token, nil
}

// Validate returns the id of the user owning value. Unknown values are
// ErrInvalidToken, expired ones ErrTokenExpired.
func (s *TokenService) Validate(ctx context.Context, value string) (string, error) {
	token, err := s.repomanager.Tokens(s.db).Find(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", err
	}

	now := s.now()
	if token.Expired(now) {
		return "", common.ErrTokenExpired
	}

	userID, err := auth.GetUserIDFromToken(value, s.secret, now)
	if err != nil {
		return "", err
	}
	if userID != token.UserID {
		s.log.Warn(ctx, "token owner mismatch", "token_id", token.ID)
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

func (s *TokenService) ListForUser(ctx context.Context, userID string) ([]*models.Token, error) {
	return s.repomanager.Tokens(s.db).ListByUser(ctx, userID)
}
