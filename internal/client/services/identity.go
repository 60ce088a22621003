// Package services contains the application services of the field client:
// identity resolution, the VIN submit path and the sync engine that drains
// the durable queue into the remote store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/dbx"
)

// Identity is the operator on whose behalf VINs are appended remotely.
type Identity struct {
	OwnerID     string
	AccessToken string
	ExpiresAt   *time.Time
}

// IdentityResolver yields the current identity or common.ErrNoIdentity.
type IdentityResolver interface {
	Resolve(ctx context.Context) (Identity, error)
}

// IdentityService keeps the token issued by the external identity provider.
//
// The token is not verified here; the remote store does that. The client
// only reads the subject (owner id) and expiry from it.
type IdentityService interface {
	IdentityResolver
	Login(ctx context.Context, token string) (Identity, error)
	Logout(ctx context.Context) error
	AccessToken(ctx context.Context) (string, error)
}

type identityService struct {
	db  *sql.DB
	now func() time.Time
}

func NewIdentityService(db *sql.DB) IdentityService {
	return &identityService{db: db, now: time.Now}
}

func (s *identityService) parse(token string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", common.ErrInvalidToken)
	}

	id := Identity{OwnerID: claims.Subject, AccessToken: token}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		id.ExpiresAt = &exp
	}
	return id, nil
}

func (s *identityService) expired(id Identity) bool {
	return id.ExpiresAt != nil && !s.now().Before(*id.ExpiresAt)
}

// Login stores token and the owner it names. Owner and token are written in
// one transaction.
func (s *identityService) Login(ctx context.Context, token string) (Identity, error) {
	id, err := s.parse(token)
	if err != nil {
		return Identity{}, err
	}
	if s.expired(id) {
		return Identity{}, fmt.Errorf("%w: token expired", common.ErrInvalidToken)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyOwnerID, []byte(id.OwnerID)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyAccessToken, []byte(id.AccessToken))
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to save identity: %w", err)
	}

	return id, nil
}

func (s *identityService) Logout(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, metadata.KeyOwnerID); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyAccessToken)
	})
}

// Resolve returns common.ErrNoIdentity when nobody is logged in, the saved
// token has expired or it no longer names the owner saved at login.
func (s *identityService) Resolve(ctx context.Context) (Identity, error) {
	repo := metadata.NewSQLiteRepository(s.db)
	token, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return Identity{}, err
	}
	if len(token) == 0 {
		return Identity{}, common.ErrNoIdentity
	}

	id, err := s.parse(string(token))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", common.ErrNoIdentity, err)
	}
	if s.expired(id) {
		return Identity{}, fmt.Errorf("%w: token expired", common.ErrNoIdentity)
	}

	owner, err := repo.Get(ctx, metadata.KeyOwnerID)
	if err != nil {
		return Identity{}, err
	}
	if string(owner) != id.OwnerID {
		return Identity{}, fmt.Errorf("%w: %w", common.ErrNoIdentity, common.ErrOwnerMismatch)
	}

	return id, nil
}

// AccessToken is a client.TokenSource over the saved identity.
func (s *identityService) AccessToken(ctx context.Context) (string, error) {
	id, err := s.Resolve(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoIdentity) {
			return "", nil
		}
		return "", err
	}
	return id.AccessToken, nil
}
