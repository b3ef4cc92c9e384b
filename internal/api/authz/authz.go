package authz

import (
	"context"
	"errors"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AuthUser struct {
	ID      int64
	Email   string
	IsAdmin bool
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil or no user is stored.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}
	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}
	return user
}

// RequireUser returns the signed-in user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireAdmin allows only site administrators.
func RequireAdmin(ctx context.Context) error {
	user, err := RequireUser(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// CanManageLeague reports whether user administers the site or commissions the league.
func CanManageLeague(ctx context.Context, q *dbgen.Queries, user *AuthUser, leagueID int64) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}
	return q.IsLeagueCommissioner(ctx, dbgen.IsLeagueCommissionerParams{
		LeagueID: leagueID,
		UserID:   user.ID,
	})
}

// RequireLeagueManager allows admins and the league's commissioners.
func RequireLeagueManager(ctx context.Context, q *dbgen.Queries, leagueID int64) error {
	user, err := RequireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := CanManageLeague(ctx, q, user, leagueID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
