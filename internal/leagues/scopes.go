package leagues

import (
	"context"
	"fmt"
	"strings"
	"time"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

// Scope selects leagues relative to today.
type Scope string

const (
	ScopeAll     Scope = ""
	ScopePast    Scope = "past"
	ScopeFuture  Scope = "future"
	ScopeCurrent Scope = "current"
)

func ParseScope(raw string) (Scope, error) {
	switch scope := Scope(strings.ToLower(strings.TrimSpace(raw))); scope {
	case ScopeAll, ScopePast, ScopeFuture, ScopeCurrent:
		return scope, nil
	default:
		return "", fmt.Errorf("scope must be past, future, or current")
	}
}

// ListByScope lists leagues in the scope, newest start date first.
// past: ended before today. future: registration opens after today.
// current: registration has opened and the league has not ended.
func ListByScope(ctx context.Context, q *dbgen.Queries, scope Scope, today time.Time) ([]dbgen.League, error) {
	today = DateOnly(today)
	switch scope {
	case ScopePast:
		return q.ListPastLeagues(ctx, today)
	case ScopeFuture:
		return q.ListFutureLeagues(ctx, today)
	case ScopeCurrent:
		return q.ListCurrentLeagues(ctx, today)
	case ScopeAll:
		return q.ListLeagues(ctx)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}
