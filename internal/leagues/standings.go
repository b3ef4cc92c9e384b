package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

// ErrTiedGame is returned when a completed game has equal scores.
var ErrTiedGame = errors.New("tied games are not supported")

type TeamStanding struct {
	Rank              int    `json:"rank"`
	TeamID            int64  `json:"teamId"`
	TeamName          string `json:"teamName"`
	GamesPlayed       int    `json:"gamesPlayed"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	PointsFor         int    `json:"pointsFor"`
	PointsAgainst     int    `json:"pointsAgainst"`
	PointDifferential int    `json:"pointDifferential"`
}

// CalculateStandings aggregates completed games into ranked standings without
// writing anything.
func CalculateStandings(ctx context.Context, q *dbgen.Queries, leagueID int64) ([]TeamStanding, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	if leagueID <= 0 {
		return nil, errors.New("league ID is required")
	}

	rows, err := q.GetLeagueStandingsData(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	teams := make(map[int64]*TeamStanding)
	for _, row := range rows {
		entry, ok := teams[row.TeamID]
		if !ok {
			entry = &TeamStanding{
				TeamID:   row.TeamID,
				TeamName: row.TeamName,
			}
			teams[row.TeamID] = entry
		}

		if !row.GameID.Valid {
			continue
		}
		if !row.HomeTeamID.Valid || !row.AwayTeamID.Valid || !row.HomeScore.Valid || !row.AwayScore.Valid {
			return nil, fmt.Errorf("game %d is missing scores", row.GameID.Int64)
		}

		teamScore, opponentScore, err := resolveGameScore(row, entry.TeamID)
		if err != nil {
			return nil, err
		}

		entry.GamesPlayed++
		entry.PointsFor += teamScore
		entry.PointsAgainst += opponentScore
		entry.PointDifferential = entry.PointsFor - entry.PointsAgainst

		switch {
		case teamScore > opponentScore:
			entry.Wins++
		case teamScore < opponentScore:
			entry.Losses++
		default:
			return nil, fmt.Errorf("game %d: %w", row.GameID.Int64, ErrTiedGame)
		}
	}

	ordered := make([]TeamStanding, 0, len(teams))
	for _, team := range teams {
		ordered = append(ordered, *team)
	}
	RankStandings(ordered)
	return ordered, nil
}

// RankStandings sorts standings best-first and assigns dense ranks from 1.
// Teams that compare equal share a rank; the next distinct team gets the
// following rank. Name only breaks display order among tied teams.
func RankStandings(standings []TeamStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		if cmp := CompareStandings(standings[i], standings[j]); cmp != 0 {
			return cmp < 0
		}
		if standings[i].TeamName != standings[j].TeamName {
			return standings[i].TeamName < standings[j].TeamName
		}
		return standings[i].TeamID < standings[j].TeamID
	})

	rank := 0
	for i := range standings {
		if i == 0 || CompareStandings(standings[i-1], standings[i]) != 0 {
			rank++
		}
		standings[i].Rank = rank
	}
}

// CompareStandings returns a negative number when a ranks ahead of b, positive
// when b ranks ahead, and 0 when they are tied. Order: more wins, fewer losses,
// higher point differential, more points scored.
func CompareStandings(a, b TeamStanding) int {
	if a.Wins != b.Wins {
		return b.Wins - a.Wins
	}
	if a.Losses != b.Losses {
		return a.Losses - b.Losses
	}
	if a.PointDifferential != b.PointDifferential {
		return b.PointDifferential - a.PointDifferential
	}
	return b.PointsFor - a.PointsFor
}

// UpdateStandings recomputes standings, stores each team's rank and stats, and
// clears the league's needs_standings_update flag in one transaction.
func UpdateStandings(ctx context.Context, database *appdb.DB, leagueID int64) ([]TeamStanding, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}

	var standings []TeamStanding
	err := database.RunInTx(ctx, func(txDB *appdb.DB) error {
		q := txDB.Queries
		if _, err := q.GetLeague(ctx, leagueID); err != nil {
			return err
		}

		calculated, err := CalculateStandings(ctx, q, leagueID)
		if err != nil {
			return err
		}

		for _, standing := range calculated {
			if err := q.UpdateTeamStanding(ctx, dbgen.UpdateTeamStandingParams{
				LeagueRank:    sql.NullInt64{Int64: int64(standing.Rank), Valid: true},
				Wins:          int64(standing.Wins),
				Losses:        int64(standing.Losses),
				PointsFor:     int64(standing.PointsFor),
				PointsAgainst: int64(standing.PointsAgainst),
				ID:            standing.TeamID,
			}); err != nil {
				return fmt.Errorf("update team %d standing: %w", standing.TeamID, err)
			}
		}

		if err := q.SetLeagueNeedsStandingsUpdate(ctx, dbgen.SetLeagueNeedsStandingsUpdateParams{
			NeedsStandingsUpdate: false,
			ID:                   leagueID,
		}); err != nil {
			return fmt.Errorf("clear standings flag: %w", err)
		}

		standings = calculated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return standings, nil
}

// StandingsFromTeams reads the stored standings in league_rank order.
func StandingsFromTeams(teams []dbgen.Team) []TeamStanding {
	standings := make([]TeamStanding, 0, len(teams))
	for _, team := range teams {
		standings = append(standings, TeamStanding{
			Rank:              int(team.LeagueRank.Int64),
			TeamID:            team.ID,
			TeamName:          team.Name,
			GamesPlayed:       int(team.Wins + team.Losses),
			Wins:              int(team.Wins),
			Losses:            int(team.Losses),
			PointsFor:         int(team.PointsFor),
			PointsAgainst:     int(team.PointsAgainst),
			PointDifferential: int(team.PointsFor - team.PointsAgainst),
		})
	}
	return standings
}

func resolveGameScore(row dbgen.GetLeagueStandingsDataRow, teamID int64) (int, int, error) {
	homeID := row.HomeTeamID.Int64
	awayID := row.AwayTeamID.Int64
	homeScore := int(row.HomeScore.Int64)
	awayScore := int(row.AwayScore.Int64)

	switch teamID {
	case homeID:
		return homeScore, awayScore, nil
	case awayID:
		return awayScore, homeScore, nil
	default:
		return 0, 0, fmt.Errorf("game %d does not include team %d", row.GameID.Int64, teamID)
	}
}
