package compgroups

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/discleague/leaguekeeper/internal/api/authz"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/leagues"
	"github.com/discleague/leaguekeeper/internal/testutil"
)

func serve(mux *http.ServeMux, method, target, body string, user *authz.AuthUser) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCompGroupMembersCompPlayers(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	prev := database
	t.Cleanup(func() { database = prev })
	InitHandlers(testDB)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/comp-groups", HandleCompGroupCreate)
	mux.HandleFunc("GET /api/v1/comp-groups", HandleCompGroupsList)
	mux.HandleFunc("PUT /api/v1/comp-groups/{id}/members", HandleCompGroupMembersUpdate)

	admin := &authz.AuthUser{ID: 1, IsAdmin: true}
	player := testutil.CreateUser(t, testDB.Queries, "volunteer@example.com", false)
	league := testutil.CreateLeague(t, testDB.Queries, nil)

	if rec := serve(mux, http.MethodPost, "/api/v1/comp-groups", `{"name":"Volunteers"}`, &authz.AuthUser{ID: player.ID}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player, got %d", rec.Code)
	}

	rec := serve(mux, http.MethodPost, "/api/v1/comp-groups", `{"name":"Volunteers"}`, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var group compGroupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rec := serve(mux, http.MethodPost, "/api/v1/comp-groups", `{"name":"Volunteers"}`, admin); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", rec.Code)
	}

	membersPath := "/api/v1/comp-groups/" + strconv.FormatInt(group.ID, 10) + "/members"
	body := `{"userIds":[` + strconv.FormatInt(player.ID, 10) + `]}`
	if rec := serve(mux, http.MethodPut, membersPath, body, admin); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(mux, http.MethodPut, "/api/v1/comp-groups/999/members", body, admin); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown group, got %d", rec.Code)
	}

	if err := testDB.Queries.AddLeagueCompedGroup(context.Background(), dbgen.AddLeagueCompedGroupParams{
		LeagueID:    league.ID,
		CompGroupID: group.ID,
	}); err != nil {
		t.Fatalf("comp group: %v", err)
	}
	comped, err := leagues.IsComped(context.Background(), testDB.Queries, league.ID, player.ID)
	if err != nil || !comped {
		t.Fatalf("expected group member comped, got %v %v", comped, err)
	}

	rec = serve(mux, http.MethodGet, "/api/v1/comp-groups", "", admin)
	var list struct {
		CompGroups []compGroupResponse `json:"compGroups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.CompGroups) != 1 || len(list.CompGroups[0].MemberIDs) != 1 || list.CompGroups[0].MemberIDs[0] != player.ID {
		t.Fatalf("unexpected comp groups %+v", list.CompGroups)
	}
}
