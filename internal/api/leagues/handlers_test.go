package leagues

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/events"
	leaguesvc "github.com/discleague/leaguekeeper/internal/leagues"
	"github.com/discleague/leaguekeeper/internal/testutil"
)

type leagueTestEnv struct {
	db        *appdb.DB
	queries   *dbgen.Queries
	publisher *testutil.RecordingPublisher
	mux       *http.ServeMux
	admin     *authz.AuthUser
	player    *authz.AuthUser
}

func setupLeagueTest(t *testing.T) leagueTestEnv {
	t.Helper()

	testDB := testutil.NewTestDB(t)

	prevDB, prevQueries, prevPublisher, prevLocation, prevClock := database, queries, publisher, location, clock
	t.Cleanup(func() {
		database, queries, publisher, location, clock = prevDB, prevQueries, prevPublisher, prevLocation, prevClock
	})

	recorder := &testutil.RecordingPublisher{}
	InitHandlers(testDB, time.UTC, recorder)
	clock = clockwork.NewFakeClockAt(time.Date(2026, time.August, 15, 18, 0, 0, 0, time.UTC))

	admin := testutil.CreateUser(t, testDB.Queries, "admin@example.com", true)
	player := testutil.CreateUser(t, testDB.Queries, "player@example.com", false)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/leagues", HandleLeaguesList)
	mux.HandleFunc("POST /api/v1/leagues", HandleLeagueCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}", HandleLeagueDetail)
	mux.HandleFunc("PUT /api/v1/leagues/{id}", HandleLeagueUpdate)
	mux.HandleFunc("DELETE /api/v1/leagues/{id}", HandleLeagueDelete)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/commissioners", HandleCommissionersUpdate)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/comps", HandleCompsUpdate)
	mux.HandleFunc("GET /api/v1/leagues/{id}/comped", HandleCompedStatus)
	mux.HandleFunc("GET /api/v1/leagues/{id}/teams", HandleTeamsList)
	mux.HandleFunc("POST /api/v1/leagues/{id}/teams", HandleTeamCreate)
	mux.HandleFunc("POST /api/v1/leagues/{id}/games", HandleGameCreate)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/games/{game_id}/score", HandleGameScoreUpdate)
	mux.HandleFunc("POST /api/v1/leagues/{id}/schedule", HandleGenerateSchedule)
	mux.HandleFunc("GET /api/v1/leagues/{id}/standings", HandleStandings)
	mux.HandleFunc("POST /api/v1/leagues/{id}/standings", HandleStandingsUpdate)

	return leagueTestEnv{
		db:        testDB,
		queries:   testDB.Queries,
		publisher: recorder,
		mux:       mux,
		admin:     &authz.AuthUser{ID: admin.ID, Email: admin.Email, IsAdmin: true},
		player:    &authz.AuthUser{ID: player.ID, Email: player.Email},
	}
}

func (env leagueTestEnv) do(t *testing.T, method, target, body string, user *authz.AuthUser) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func leaguePath(id int64, suffix string) string {
	return "/api/v1/leagues/" + itoa(id) + suffix
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestLeagueCreateRequiresAdmin(t *testing.T) {
	env := setupLeagueTest(t)
	body := `{"name":"Spring League","ageDivision":"adult","season":"spring","sport":"ultimate","price":60}`

	if rec := env.do(t, http.MethodPost, "/api/v1/leagues", body, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/leagues", body, env.player); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player, got %d", rec.Code)
	}
}

func TestLeagueCreateAppliesDefaults(t *testing.T) {
	env := setupLeagueTest(t)
	body := `{"name":"  Spring League ","ageDivision":"Adult","season":"spring","sport":"ultimate","price":60}`

	rec := env.do(t, http.MethodPost, "/api/v1/leagues", body, env.admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp leagueResponse
	decodeBody(t, rec, &resp)
	if resp.Name != "Spring League" || resp.AgeDivision != "adult" || resp.Price != 60 {
		t.Fatalf("unexpected league %+v", resp)
	}
	if resp.StartDate != "2026-09-19" || resp.EndDate != "2026-11-28" {
		t.Fatalf("expected default season dates, got %s to %s", resp.StartDate, resp.EndDate)
	}
	if resp.RegistrationOpen == nil || *resp.RegistrationOpen != "2026-08-29" {
		t.Fatalf("expected registration to open 2026-08-29, got %v", resp.RegistrationOpen)
	}
	if resp.RegistrationClose == nil || *resp.RegistrationClose != "2026-09-12" {
		t.Fatalf("expected registration to close 2026-09-12, got %v", resp.RegistrationClose)
	}
	if !resp.AllowSelfRank || !resp.AllowPairs || !resp.EosTourney || resp.MstTourney || resp.RequireGrank {
		t.Fatalf("unexpected default flags %+v", resp)
	}
	if resp.RegistrationIsOpen || resp.Started {
		t.Fatalf("expected a future league, got %+v", resp)
	}
}

func TestLeagueCreateValidation(t *testing.T) {
	env := setupLeagueTest(t)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "price and name",
			body:   `{"name":"  ","ageDivision":"adult","season":"fall","sport":"ultimate","price":250}`,
			fields: []string{"name", "price"},
		},
		{
			name:   "fractional price",
			body:   `{"name":"League","ageDivision":"adult","season":"fall","sport":"ultimate","price":45.5}`,
			fields: []string{"price"},
		},
		{
			name:   "enumerations",
			body:   `{"name":"League","ageDivision":"seniors","season":"monsoon","sport":"disc golf","price":45}`,
			fields: []string{"age_division", "season", "sport"},
		},
		{
			name:   "dates",
			body:   `{"name":"League","ageDivision":"adult","season":"fall","sport":"ultimate","price":45,"startDate":"2026-10-01","endDate":"2026-09-01"}`,
			fields: []string{"end_date"},
		},
		{
			name:   "bad date format",
			body:   `{"name":"League","ageDivision":"adult","season":"fall","sport":"ultimate","price":45,"registrationOpen":"08/01/2026"}`,
			fields: []string{"registration_open"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/leagues", tt.body, env.admin)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp apiutil.ErrorResponse
			decodeBody(t, rec, &resp)
			errs := leaguesvc.ValidationErrors(resp.Fields)
			for _, field := range tt.fields {
				if !errs.Has(field) {
					t.Fatalf("expected error for %s, got %+v", field, resp.Fields)
				}
			}
		})
	}
}

func TestLeagueUpdateByCommissioner(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)

	if rec := env.do(t, http.MethodPut, leaguePath(league.ID, ""), `{"price":50}`, env.player); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before becoming commissioner, got %d", rec.Code)
	}

	if err := env.queries.AddLeagueCommissioner(context.Background(), dbgen.AddLeagueCommissionerParams{
		LeagueID: league.ID,
		UserID:   env.player.ID,
	}); err != nil {
		t.Fatalf("add commissioner: %v", err)
	}

	rec := env.do(t, http.MethodPut, leaguePath(league.ID, ""), `{"price":50,"registrationClose":""}`, env.player)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp leagueResponse
	decodeBody(t, rec, &resp)
	if resp.Price != 50 || resp.Name != league.Name {
		t.Fatalf("expected only price to change, got %+v", resp)
	}
	if resp.RegistrationClose != nil {
		t.Fatalf("expected registration close to be cleared, got %v", *resp.RegistrationClose)
	}
	if resp.RegistrationIsOpen {
		t.Fatalf("expected registration closed without a close date")
	}
}

func TestLeaguesListByScope(t *testing.T) {
	env := setupLeagueTest(t)
	testutil.CreateLeague(t, env.queries, func(p *dbgen.CreateLeagueParams) {
		p.Name = "Summer League"
		p.StartDate = testutil.Date(2026, time.May, 1)
		p.EndDate = testutil.Date(2026, time.July, 1)
		p.RegistrationOpen = sql.NullTime{Time: testutil.Date(2026, time.April, 1), Valid: true}
		p.RegistrationClose = sql.NullTime{Time: testutil.Date(2026, time.April, 20), Valid: true}
	})
	current := testutil.CreateLeague(t, env.queries, nil)
	testutil.CreateLeague(t, env.queries, func(p *dbgen.CreateLeagueParams) {
		p.Name = "Winter League"
		p.StartDate = testutil.Date(2026, time.December, 1)
		p.EndDate = testutil.Date(2027, time.February, 1)
		p.RegistrationOpen = sql.NullTime{Time: testutil.Date(2026, time.September, 1), Valid: true}
		p.RegistrationClose = sql.NullTime{Time: testutil.Date(2026, time.November, 1), Valid: true}
	})

	tests := []struct {
		scope string
		want  []string
	}{
		{"current", []string{current.Name}},
		{"past", []string{"Summer League"}},
		{"future", []string{"Winter League"}},
		{"", []string{"Winter League", current.Name, "Summer League"}},
	}
	for _, tt := range tests {
		t.Run("scope="+tt.scope, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/leagues?scope="+tt.scope, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var resp struct {
				Leagues []leagueResponse `json:"leagues"`
			}
			decodeBody(t, rec, &resp)
			if len(resp.Leagues) != len(tt.want) {
				t.Fatalf("expected %d leagues, got %+v", len(tt.want), resp.Leagues)
			}
			for i, name := range tt.want {
				if resp.Leagues[i].Name != name {
					t.Fatalf("expected %s at %d, got %s", name, i, resp.Leagues[i].Name)
				}
			}
		})
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/leagues?scope=someday", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", rec.Code)
	}
}

func TestLeaguesListHTMXFragment(t *testing.T) {
	env := setupLeagueTest(t)
	testutil.CreateLeague(t, env.queries, func(p *dbgen.CreateLeagueParams) {
		p.Name = "Hat <League>"
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leagues", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hat &lt;League&gt;") {
		t.Fatalf("expected escaped league name in %s", body)
	}
	if !strings.Contains(body, "Registration open") {
		t.Fatalf("expected registration badge in %s", body)
	}
}

func TestLeagueDetailAndDelete(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)

	rec := env.do(t, http.MethodGet, leaguePath(league.ID, ""), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp leagueResponse
	decodeBody(t, rec, &resp)
	if !resp.RegistrationIsOpen || resp.Started {
		t.Fatalf("expected open registration before the start, got %+v", resp)
	}

	if rec := env.do(t, http.MethodDelete, leaguePath(league.ID, ""), "", env.player); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player delete, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, leaguePath(league.ID, ""), "", env.admin); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin delete, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, leaguePath(league.ID, ""), "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, leaguePath(league.ID, ""), "", env.admin); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", rec.Code)
	}
}

func TestCommissionersUpdate(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)

	body := `{"userIds":[` + itoa(env.player.ID) + `,` + itoa(env.player.ID) + `]}`
	rec := env.do(t, http.MethodPut, leaguePath(league.ID, "/commissioners"), body, env.admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	ok, err := authz.CanManageLeague(context.Background(), env.queries, env.player, league.ID)
	if err != nil || !ok {
		t.Fatalf("expected player to manage league, got %v %v", ok, err)
	}

	rec = env.do(t, http.MethodPut, leaguePath(league.ID, "/commissioners"), `{"userIds":[9999]}`, env.admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown user, got %d", rec.Code)
	}
}

func TestCompsAndCompedStatus(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)

	rec := env.do(t, http.MethodGet, leaguePath(league.ID, "/comped"), "", env.player)
	var status struct {
		Comped bool `json:"comped"`
	}
	decodeBody(t, rec, &status)
	if status.Comped {
		t.Fatalf("expected player not comped")
	}

	body := `{"playerIds":[` + itoa(env.player.ID) + `],"groupIds":[]}`
	if rec := env.do(t, http.MethodPut, leaguePath(league.ID, "/comps"), body, env.player); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, leaguePath(league.ID, "/comps"), body, env.admin); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, leaguePath(league.ID, "/comped"), "", env.player)
	decodeBody(t, rec, &status)
	if !status.Comped {
		t.Fatalf("expected player comped")
	}

	if rec := env.do(t, http.MethodGet, leaguePath(league.ID, "/comped"), "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a user, got %d", rec.Code)
	}
}

func TestTeamCreateAndList(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)

	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/teams"), `{"name":"Alpha"}`, env.admin); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	stored, err := env.queries.GetLeague(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("GetLeague: %v", err)
	}
	if !stored.NeedsStandingsUpdate {
		t.Fatalf("expected team creation to flag standings for refresh")
	}
	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/teams"), `{"name":"Alpha"}`, env.admin); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate team, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/teams"), `{"name":" "}`, env.admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, leaguePath(league.ID, "/teams"), "", nil)
	var resp struct {
		Teams []teamResponse `json:"teams"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Teams) != 1 || resp.Teams[0].Name != "Alpha" || resp.Teams[0].LeagueRank != nil {
		t.Fatalf("unexpected teams %+v", resp.Teams)
	}
}

func TestScoreUpdateFlagsAndRecomputesStandings(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)
	alpha := testutil.CreateTeam(t, env.queries, league.ID, "Alpha")
	bravo := testutil.CreateTeam(t, env.queries, league.ID, "Bravo")

	body := `{"homeTeamId":` + itoa(alpha.ID) + `,"awayTeamId":` + itoa(bravo.ID) + `,"gameDate":"2026-09-08","round":1}`
	rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/games"), body, env.admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var game gameResponse
	decodeBody(t, rec, &game)
	if game.HomeScore != nil {
		t.Fatalf("expected unplayed game")
	}

	scorePath := leaguePath(league.ID, "/games/"+itoa(game.ID)+"/score")
	if rec := env.do(t, http.MethodPut, scorePath, `{"homeScore":12,"awayScore":12}`, env.admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tied score, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, scorePath, `{"homeScore":15,"awayScore":10}`, env.admin); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := env.queries.GetLeague(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if !stored.NeedsStandingsUpdate {
		t.Fatalf("expected score update to flag standings")
	}

	rec = env.do(t, http.MethodPost, leaguePath(league.ID, "/standings"), "", env.admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		NeedsStandingsUpdate bool                     `json:"needsStandingsUpdate"`
		Standings            []leaguesvc.TeamStanding `json:"standings"`
	}
	decodeBody(t, rec, &resp)
	if resp.NeedsStandingsUpdate {
		t.Fatalf("expected flag cleared")
	}
	if len(resp.Standings) != 2 || resp.Standings[0].TeamName != "Alpha" || resp.Standings[0].Rank != 1 || resp.Standings[1].Rank != 2 {
		t.Fatalf("unexpected standings %+v", resp.Standings)
	}

	published := env.publisher.Events()
	if len(published) != 1 || published[0].EventType != events.TypeStandingsUpdated || published[0].LeagueID != league.ID {
		t.Fatalf("expected one standings event, got %+v", published)
	}

	rec = env.do(t, http.MethodGet, leaguePath(league.ID, "/standings"), "", nil)
	decodeBody(t, rec, &resp)
	if len(resp.Standings) != 2 || resp.Standings[0].Wins != 1 || resp.Standings[1].Losses != 1 {
		t.Fatalf("unexpected stored standings %+v", resp.Standings)
	}
}

func TestGameCreateRejectsForeignTeams(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)
	other := testutil.CreateLeague(t, env.queries, func(p *dbgen.CreateLeagueParams) { p.Name = "Other" })
	alpha := testutil.CreateTeam(t, env.queries, league.ID, "Alpha")
	outsider := testutil.CreateTeam(t, env.queries, other.ID, "Outsider")

	body := `{"homeTeamId":` + itoa(alpha.ID) + `,"awayTeamId":` + itoa(outsider.ID) + `,"gameDate":"2026-09-08"}`
	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/games"), body, env.admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for team from another league, got %d", rec.Code)
	}

	body = `{"homeTeamId":` + itoa(alpha.ID) + `,"awayTeamId":` + itoa(alpha.ID) + `,"gameDate":"2026-09-08"}`
	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/games"), body, env.admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for same team, got %d", rec.Code)
	}
}

func TestGenerateSchedule(t *testing.T) {
	env := setupLeagueTest(t)
	league := testutil.CreateLeague(t, env.queries, nil)
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		testutil.CreateTeam(t, env.queries, league.ID, name)
	}

	rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/schedule"), `{"gameDay":"tuesday"}`, env.admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Games []gameResponse `json:"games"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Games) != 6 {
		t.Fatalf("expected 6 games for 4 teams, got %d", len(resp.Games))
	}
	if resp.Games[0].GameDate != "2026-09-08" || resp.Games[len(resp.Games)-1].GameDate != "2026-09-22" {
		t.Fatalf("expected weekly Tuesdays from the start date, got %s to %s", resp.Games[0].GameDate, resp.Games[len(resp.Games)-1].GameDate)
	}

	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/schedule"), `{"gameDay":"tuesday"}`, env.admin); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for existing schedule, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/schedule"), `{"gameDay":"wednesday","replace":true}`, env.admin); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 when replacing, got %d: %s", rec.Code, rec.Body.String())
	}
	games, err := env.queries.ListLeagueGames(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 6 || games[0].GameDate.Weekday() != time.Wednesday {
		t.Fatalf("expected replaced Wednesday schedule, got %d games", len(games))
	}

	if rec := env.do(t, http.MethodPost, leaguePath(league.ID, "/schedule"), `{"gameDay":"someday"}`, env.admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown game day, got %d", rec.Code)
	}
}
