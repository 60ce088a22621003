package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vinscanner/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login asks for the token issued by the identity provider, stores it and
// kicks off a sync so that VINs captured while logged out are pushed.
func (a *App) Login(ctx context.Context) error {
	token, err := getSecret("Paste access token", a.out)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("empty token")
	}

	id, err := a.identity.Login(ctx, token)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "logged in", "owner", id.OwnerID)
	a.printf("Logged in as %s\n", id.OwnerID)
	if id.ExpiresAt != nil {
		a.printf("Token valid until %s\n", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}

	a.sync.Trigger(ctx)
	return nil
}

// Logout forgets the token. Queued VINs stay in the queue and are pushed
// after the next login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.identity.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) ownerID(ctx context.Context) (string, error) {
	id, err := a.identity.Resolve(ctx)
	if errors.Is(err, common.ErrNoIdentity) {
		return "", errors.New("not logged in, use 'login' first")
	}
	if err != nil {
		return "", err
	}
	return id.OwnerID, nil
}
