package leagues

import (
	"context"
	"errors"
	"fmt"

	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

// IsComped reports whether the user is comped for the league, either directly
// or through membership in a comped group.
func IsComped(ctx context.Context, q *dbgen.Queries, leagueID, userID int64) (bool, error) {
	if q == nil {
		return false, errors.New("queries are required")
	}
	if leagueID <= 0 {
		return false, errors.New("league ID is required")
	}
	if userID <= 0 {
		return false, nil
	}
	return q.IsUserComped(ctx, dbgen.IsUserCompedParams{LeagueID: leagueID, UserID: userID})
}

// Comps lists who is comped for a league.
type Comps struct {
	PlayerIDs []int64 `json:"playerIds"`
	GroupIDs  []int64 `json:"groupIds"`
}

// LoadComps returns the comped players and groups of a league.
func LoadComps(ctx context.Context, q *dbgen.Queries, leagueID int64) (Comps, error) {
	players, err := q.ListLeagueCompedPlayerIDs(ctx, leagueID)
	if err != nil {
		return Comps{}, fmt.Errorf("list comped players: %w", err)
	}
	groups, err := q.ListLeagueCompedGroupIDs(ctx, leagueID)
	if err != nil {
		return Comps{}, fmt.Errorf("list comped groups: %w", err)
	}
	return Comps{PlayerIDs: nonNilIDs(players), GroupIDs: nonNilIDs(groups)}, nil
}

// ReplaceComps swaps the league's comped players and groups for the given sets.
func ReplaceComps(ctx context.Context, database *appdb.DB, leagueID int64, comps Comps) error {
	return database.RunInTx(ctx, func(txDB *appdb.DB) error {
		q := txDB.Queries
		if err := q.ClearLeagueCompedPlayers(ctx, leagueID); err != nil {
			return fmt.Errorf("clear comped players: %w", err)
		}
		if err := q.ClearLeagueCompedGroups(ctx, leagueID); err != nil {
			return fmt.Errorf("clear comped groups: %w", err)
		}
		for _, userID := range comps.PlayerIDs {
			if err := q.AddLeagueCompedPlayer(ctx, dbgen.AddLeagueCompedPlayerParams{LeagueID: leagueID, UserID: userID}); err != nil {
				return fmt.Errorf("comp player %d: %w", userID, err)
			}
		}
		for _, groupID := range comps.GroupIDs {
			if err := q.AddLeagueCompedGroup(ctx, dbgen.AddLeagueCompedGroupParams{LeagueID: leagueID, CompGroupID: groupID}); err != nil {
				return fmt.Errorf("comp group %d: %w", groupID, err)
			}
		}
		return nil
	})
}

// ReplaceCommissioners swaps the league's commissioners for userIDs.
func ReplaceCommissioners(ctx context.Context, database *appdb.DB, leagueID int64, userIDs []int64) error {
	return database.RunInTx(ctx, func(txDB *appdb.DB) error {
		q := txDB.Queries
		if err := q.ClearLeagueCommissioners(ctx, leagueID); err != nil {
			return fmt.Errorf("clear commissioners: %w", err)
		}
		for _, userID := range userIDs {
			if err := q.AddLeagueCommissioner(ctx, dbgen.AddLeagueCommissionerParams{LeagueID: leagueID, UserID: userID}); err != nil {
				return fmt.Errorf("add commissioner %d: %w", userID, err)
			}
		}
		return nil
	})
}

// ReplaceCompGroupMembers swaps a comp group's members for userIDs.
func ReplaceCompGroupMembers(ctx context.Context, database *appdb.DB, groupID int64, userIDs []int64) error {
	return database.RunInTx(ctx, func(txDB *appdb.DB) error {
		q := txDB.Queries
		if err := q.ClearCompGroupMembers(ctx, groupID); err != nil {
			return fmt.Errorf("clear comp group members: %w", err)
		}
		for _, userID := range userIDs {
			if err := q.AddCompGroupMember(ctx, dbgen.AddCompGroupMemberParams{CompGroupID: groupID, UserID: userID}); err != nil {
				return fmt.Errorf("add comp group member %d: %w", userID, err)
			}
		}
		return nil
	})
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
