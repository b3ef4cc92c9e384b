package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/events"
	"github.com/discleague/leaguekeeper/internal/testutil"
)

func TestServiceAddJobValidation(t *testing.T) {
	svc, err := New(gocron.WithClock(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc.Start()
	t.Cleanup(func() { _ = svc.Stop() })

	if _, err := svc.AddJob(" ", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("noop", "", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("noop", "not a cron", func() {}); err == nil {
		t.Fatalf("expected invalid cron expression to fail")
	}

	job, err := svc.AddJob("noop", "*/10 * * * *", func() {})
	if err != nil {
		t.Fatalf("add job: %v", err)
	}
	if job.Name() != "noop" {
		t.Fatalf("expected job name noop, got %q", job.Name())
	}
	if len(svc.Jobs()) != 1 {
		t.Fatalf("expected one registered job, got %d", len(svc.Jobs()))
	}
}

func TestNilServiceIsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("noop", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from Stop, got %v", err)
	}
}

func flagStandings(t *testing.T, database *db.DB, leagueID int64) {
	t.Helper()
	if err := database.Queries.SetLeagueNeedsStandingsUpdate(context.Background(), dbgen.SetLeagueNeedsStandingsUpdateParams{
		NeedsStandingsUpdate: true,
		ID:                   leagueID,
	}); err != nil {
		t.Fatalf("flag standings: %v", err)
	}
}

func TestRefreshStandings(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	hammers := testutil.CreateTeam(t, q, league.ID, "Hammers")
	hucks := testutil.CreateTeam(t, q, league.ID, "Hucks")
	testutil.CreatePlayedGame(t, q, league.ID, hammers.ID, hucks.ID, 13, 9)
	flagStandings(t, database, league.ID)

	tied := testutil.CreateLeague(t, q, func(p *dbgen.CreateLeagueParams) { p.Name = "Tied League" })
	a := testutil.CreateTeam(t, q, tied.ID, "Layouts")
	b := testutil.CreateTeam(t, q, tied.ID, "Scoobers")
	testutil.CreatePlayedGame(t, q, tied.ID, a.ID, b.ID, 11, 11)
	flagStandings(t, database, tied.ID)

	publisher := &testutil.RecordingPublisher{}
	refreshed, err := RefreshStandings(ctx, database, publisher)
	if err != nil {
		t.Fatalf("refresh standings: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("expected 1 league refreshed, got %d", refreshed)
	}

	updated, err := q.GetLeague(ctx, league.ID)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if updated.NeedsStandingsUpdate {
		t.Fatalf("expected standings flag cleared")
	}
	winner, err := q.GetTeam(ctx, hammers.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if !winner.LeagueRank.Valid || winner.LeagueRank.Int64 != 1 || winner.Wins != 1 {
		t.Fatalf("unexpected winner standing %+v", winner)
	}

	stillTied, err := q.GetLeague(ctx, tied.ID)
	if err != nil {
		t.Fatalf("get tied league: %v", err)
	}
	if !stillTied.NeedsStandingsUpdate {
		t.Fatalf("expected tied league to stay flagged")
	}

	published := publisher.Events()
	if len(published) != 1 || published[0].LeagueID != league.ID || published[0].EventType != events.TypeStandingsUpdated {
		t.Fatalf("unexpected events %+v", published)
	}

	refreshed, err = RefreshStandings(ctx, database, nil)
	if err != nil || refreshed != 0 {
		t.Fatalf("expected nothing left to refresh, got %d %v", refreshed, err)
	}
}

func TestSendLeagueStartReminders(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	league := testutil.CreateLeague(t, q, nil)
	later := testutil.CreateLeague(t, q, func(p *dbgen.CreateLeagueParams) {
		p.Name = "Winter League"
		p.Season = "winter"
		p.StartDate = testutil.Date(2026, time.December, 1)
		p.EndDate = testutil.Date(2027, time.February, 1)
	})

	register := func(leagueID int64, email, status string) {
		user := testutil.CreateUser(t, q, email, false)
		if _, err := q.CreateRegistration(ctx, dbgen.CreateRegistrationParams{
			LeagueID: leagueID,
			UserID:   user.ID,
			Status:   status,
			Phone:    "+16502530000",
		}); err != nil {
			t.Fatalf("create registration: %v", err)
		}
	}
	register(league.ID, "pending@example.com", "pending")
	register(league.ID, "active@example.com", "active")
	register(league.ID, "waitlisted@example.com", "waitlisted")
	register(later.ID, "winter@example.com", "active")

	sender := testutil.NewRecordingSender()
	sent, err := SendLeagueStartReminders(ctx, database, sender, "https://league.example.com/", testutil.Date(2026, time.September, 7))
	if err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 reminders, got %d", sent)
	}

	recipients := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg := sender.Next(t)
		recipients[msg.Recipient] = true
		if msg.Subject != "Fall Hat League starts tomorrow" {
			t.Fatalf("unexpected subject %q", msg.Subject)
		}
		if !strings.Contains(msg.Body, "https://league.example.com/leagues/") {
			t.Fatalf("expected league link in body: %s", msg.Body)
		}
	}
	if !recipients["pending@example.com"] || !recipients["active@example.com"] {
		t.Fatalf("unexpected recipients %v", recipients)
	}
	if sender.Pending() != 0 {
		t.Fatalf("expected no further emails, got %d", sender.Pending())
	}
}
