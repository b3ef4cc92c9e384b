package authz

import (
	"context"
	"errors"
	"testing"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/testutil"
)

func TestRequireAdminUnauthenticated(t *testing.T) {
	if err := RequireAdmin(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireAdminForbiddenForPlayers(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 10})
	if err := RequireAdmin(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireAdminAllowsAdmins(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 10, IsAdmin: true})
	if err := RequireAdmin(ctx); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestUserFromContextEmpty(t *testing.T) {
	if UserFromContext(context.Background()) != nil {
		t.Fatalf("expected nil user for empty context")
	}
}

func TestRequireLeagueManager(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	commissioner := testutil.CreateUser(t, q, "commish@example.com", false)
	player := testutil.CreateUser(t, q, "player@example.com", false)
	if err := q.AddLeagueCommissioner(ctx, dbgen.AddLeagueCommissionerParams{LeagueID: league.ID, UserID: commissioner.ID}); err != nil {
		t.Fatalf("add commissioner: %v", err)
	}

	tests := []struct {
		name string
		user *AuthUser
		want error
	}{
		{"anonymous", nil, ErrUnauthenticated},
		{"player", &AuthUser{ID: player.ID}, ErrForbidden},
		{"commissioner", &AuthUser{ID: commissioner.ID}, nil},
		{"admin", &AuthUser{ID: 999, IsAdmin: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqCtx := ctx
			if tt.user != nil {
				reqCtx = ContextWithUser(ctx, tt.user)
			}
			err := RequireLeagueManager(reqCtx, q, league.ID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

