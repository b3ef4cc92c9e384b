package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateLeague inserts a league with valid defaults; mutate adjusts params before insert.
func CreateLeague(t *testing.T, q *dbgen.Queries, mutate func(*dbgen.CreateLeagueParams)) dbgen.League {
	t.Helper()

	params := dbgen.CreateLeagueParams{
		Name:              "Fall Hat League",
		AgeDivision:       "adult",
		Season:            "fall",
		Sport:             "ultimate",
		StartDate:         Date(2026, time.September, 8),
		EndDate:           Date(2026, time.November, 17),
		RegistrationOpen:  sql.NullTime{Time: Date(2026, time.August, 1), Valid: true},
		RegistrationClose: sql.NullTime{Time: Date(2026, time.August, 31), Valid: true},
		PlayerLimit:       "{}",
		Price:             45,
		AllowSelfRank:     true,
		AllowPairs:        true,
		EosTourney:        true,
	}
	if mutate != nil {
		mutate(&params)
	}

	league, err := q.CreateLeague(context.Background(), params)
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	return league
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, q *dbgen.Queries, email string, isAdmin bool) dbgen.User {
	t.Helper()

	user, err := q.CreateUser(context.Background(), dbgen.CreateUserParams{
		Email:     email,
		FirstName: "Test",
		LastName:  "Player",
		IsAdmin:   isAdmin,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// CreateTeam inserts a team into the league.
func CreateTeam(t *testing.T, q *dbgen.Queries, leagueID int64, name string) dbgen.Team {
	t.Helper()

	team, err := q.CreateTeam(context.Background(), dbgen.CreateTeamParams{LeagueID: leagueID, Name: name})
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}

// CreatePlayedGame inserts a completed game.
func CreatePlayedGame(t *testing.T, q *dbgen.Queries, leagueID, homeID, awayID int64, homeScore, awayScore int64) dbgen.Game {
	t.Helper()

	game, err := q.CreateGame(context.Background(), dbgen.CreateGameParams{
		LeagueID:   leagueID,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		GameDate:   Date(2026, time.September, 15),
		HomeScore:  sql.NullInt64{Int64: homeScore, Valid: true},
		AwayScore:  sql.NullInt64{Int64: awayScore, Valid: true},
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}
