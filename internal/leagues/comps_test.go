package leagues

import (
	"context"
	"testing"

	"github.com/discleague/leaguekeeper/internal/testutil"
)

func TestIsCompedDirectAndThroughGroup(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	direct := testutil.CreateUser(t, q, "direct@example.com", false)
	grouped := testutil.CreateUser(t, q, "grouped@example.com", false)
	paying := testutil.CreateUser(t, q, "paying@example.com", false)

	group, err := q.CreateCompGroup(ctx, "Volunteers")
	if err != nil {
		t.Fatalf("create comp group: %v", err)
	}
	if err := ReplaceCompGroupMembers(ctx, database, group.ID, []int64{grouped.ID}); err != nil {
		t.Fatalf("replace members: %v", err)
	}
	if err := ReplaceComps(ctx, database, league.ID, Comps{PlayerIDs: []int64{direct.ID}, GroupIDs: []int64{group.ID}}); err != nil {
		t.Fatalf("replace comps: %v", err)
	}

	for _, tt := range []struct {
		userID int64
		want   bool
	}{
		{direct.ID, true},
		{grouped.ID, true},
		{paying.ID, false},
		{0, false},
	} {
		got, err := IsComped(ctx, q, league.ID, tt.userID)
		if err != nil {
			t.Fatalf("is comped %d: %v", tt.userID, err)
		}
		if got != tt.want {
			t.Fatalf("IsComped(%d) = %v, want %v", tt.userID, got, tt.want)
		}
	}

	comps, err := LoadComps(ctx, q, league.ID)
	if err != nil {
		t.Fatalf("load comps: %v", err)
	}
	if len(comps.PlayerIDs) != 1 || comps.PlayerIDs[0] != direct.ID || len(comps.GroupIDs) != 1 || comps.GroupIDs[0] != group.ID {
		t.Fatalf("unexpected comps %+v", comps)
	}
}

func TestReplaceCompsClearsPrevious(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	first := testutil.CreateUser(t, q, "first@example.com", false)

	if err := ReplaceComps(ctx, database, league.ID, Comps{PlayerIDs: []int64{first.ID}}); err != nil {
		t.Fatalf("replace comps: %v", err)
	}
	if err := ReplaceComps(ctx, database, league.ID, Comps{}); err != nil {
		t.Fatalf("clear comps: %v", err)
	}

	comps, err := LoadComps(ctx, q, league.ID)
	if err != nil {
		t.Fatalf("load comps: %v", err)
	}
	if len(comps.PlayerIDs) != 0 || comps.PlayerIDs == nil {
		t.Fatalf("expected empty non-nil player IDs, got %#v", comps.PlayerIDs)
	}
}

func TestReplaceCompsRejectsUnknownUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	keep := testutil.CreateUser(t, q, "keep@example.com", false)
	if err := ReplaceComps(ctx, database, league.ID, Comps{PlayerIDs: []int64{keep.ID}}); err != nil {
		t.Fatalf("replace comps: %v", err)
	}

	if err := ReplaceComps(ctx, database, league.ID, Comps{PlayerIDs: []int64{9999}}); err == nil {
		t.Fatalf("expected foreign key failure")
	}

	comps, err := LoadComps(ctx, q, league.ID)
	if err != nil {
		t.Fatalf("load comps: %v", err)
	}
	if len(comps.PlayerIDs) != 1 || comps.PlayerIDs[0] != keep.ID {
		t.Fatalf("expected rollback to keep previous comps, got %+v", comps)
	}
}

func TestReplaceCommissioners(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	a := testutil.CreateUser(t, q, "a@example.com", false)
	b := testutil.CreateUser(t, q, "b@example.com", false)

	if err := ReplaceCommissioners(ctx, database, league.ID, []int64{a.ID, b.ID}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := ReplaceCommissioners(ctx, database, league.ID, []int64{b.ID}); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	ids, err := q.ListLeagueCommissionerIDs(ctx, league.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("unexpected commissioners %v", ids)
	}
}
