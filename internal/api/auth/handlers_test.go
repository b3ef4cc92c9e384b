package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/discleague/leaguekeeper/internal/api/authz"
	"github.com/discleague/leaguekeeper/internal/config"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/ratelimit"
	"github.com/discleague/leaguekeeper/internal/testutil"
)

const testPassword = "hammer-and-scoober"

type authTestContext struct {
	queries *dbgen.Queries
	clock   clockwork.FakeClock
	user    dbgen.User
}

func setupAuthTest(t *testing.T) authTestContext {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevConfig, prevQueries, prevLimiter, prevClock := appConfig, queries, limiter, clock
	t.Cleanup(func() {
		appConfig, queries, limiter, clock = prevConfig, prevQueries, prevLimiter, prevClock
		sessionMu.Lock()
		sessionStore = make(map[string]sessionRecord)
		sessionMu.Unlock()
	})

	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC))
	clock = fakeClock

	cfg := &config.Config{}
	cfg.App.Environment = "development"
	cfg.App.SecretKey = "test-secret-key"

	rl := ratelimit.New(&ratelimit.Config{
		MaxFailures:    3,
		Lockout:        time.Minute,
		MaxIPPerWindow: 100,
		IPWindow:       time.Hour,
		Clock:          fakeClock,
	})
	t.Cleanup(rl.Close)

	InitHandlers(database.Queries, cfg, rl)

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := database.Queries.CreateUser(context.Background(), dbgen.CreateUserParams{
		Email:        "Player@Example.com",
		FirstName:    "Pat",
		LastName:     "Handler",
		PasswordHash: sql.NullString{String: hash, Valid: true},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	return authTestContext{queries: database.Queries, clock: fakeClock, user: user}
}

func newLoginRequest(email, password string) *http.Request {
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.10:4000"
	return req
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatalf("expected %s cookie", sessionCookieName)
	return nil
}

func TestHandleLoginSetsSessionCookie(t *testing.T) {
	tc := setupAuthTest(t)

	recorder := httptest.NewRecorder()
	HandleLogin(recorder, newLoginRequest("player@example.com", testPassword))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	cookie := sessionCookie(t, recorder.Result())
	if !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}

	var body userResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != tc.user.ID {
		t.Fatalf("expected user %d, got %+v", tc.user.ID, body)
	}
	if strings.Contains(recorder.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked in response")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user == nil || user.ID != tc.user.ID {
		t.Fatalf("expected session user %d, got %+v", tc.user.ID, user)
	}
}

func TestHandleLoginRejectsBadCredentials(t *testing.T) {
	setupAuthTest(t)

	for _, req := range []*http.Request{
		newLoginRequest("player@example.com", "not-the-password"),
		newLoginRequest("nobody@example.com", testPassword),
	} {
		recorder := httptest.NewRecorder()
		HandleLogin(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == sessionCookieName && cookie.Value != "" {
				t.Fatalf("unexpected session cookie on failed login")
			}
		}
	}
}

func TestHandleLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	tc := setupAuthTest(t)

	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		HandleLogin(recorder, newLoginRequest("player@example.com", "wrong-password"))
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	HandleLogin(recorder, newLoginRequest("player@example.com", testPassword))
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 during lockout, got %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	tc.clock.Advance(time.Minute)
	recorder = httptest.NewRecorder()
	HandleLogin(recorder, newLoginRequest("player@example.com", testPassword))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected login after lockout, got %d", recorder.Code)
	}
}

func TestSessionExpires(t *testing.T) {
	tc := setupAuthTest(t)

	recorder := httptest.NewRecorder()
	if err := CreateSession(recorder, tc.user.ID); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(t, recorder.Result())

	tc.clock.Advance(sessionTTL)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user != nil {
		t.Fatalf("expected expired session to be rejected")
	}
}

func TestUserFromRequestRejectsTamperedCookie(t *testing.T) {
	tc := setupAuthTest(t)

	recorder := httptest.NewRecorder()
	if err := CreateSession(recorder, tc.user.ID); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(t, recorder.Result())
	token, _, _ := strings.Cut(cookie.Value, ".")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token + ".forged"})
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil || user != nil {
		t.Fatalf("expected forged cookie to be ignored, got %+v %v", user, err)
	}
}

func TestHandleLogoutEndsSession(t *testing.T) {
	tc := setupAuthTest(t)

	recorder := httptest.NewRecorder()
	if err := CreateSession(recorder, tc.user.ID); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(t, recorder.Result())

	logoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutRecorder := httptest.NewRecorder()
	HandleLogout(logoutRecorder, logoutReq)
	if logoutRecorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", logoutRecorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil || user != nil {
		t.Fatalf("expected session cleared, got %+v %v", user, err)
	}
}

func TestHandleMe(t *testing.T) {
	tc := setupAuthTest(t)

	recorder := httptest.NewRecorder()
	HandleMe(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: tc.user.ID}))
	recorder = httptest.NewRecorder()
	HandleMe(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"firstName":"Pat"`) {
		t.Fatalf("unexpected body %s", recorder.Body.String())
	}
}

func TestEnsureAdmin(t *testing.T) {
	tc := setupAuthTest(t)
	ctx := context.Background()

	cfg := &config.Config{}
	if err := EnsureAdmin(ctx, tc.queries, cfg); err != nil {
		t.Fatalf("ensure admin without config: %v", err)
	}

	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.Password = "commissioner-pass"
	if err := EnsureAdmin(ctx, tc.queries, cfg); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := EnsureAdmin(ctx, tc.queries, cfg); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}

	count, err := tc.queries.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one admin, got %d", count)
	}

	admin, err := tc.queries.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !VerifyPassword(admin.PasswordHash.String, "commissioner-pass") {
		t.Fatalf("expected admin password to verify")
	}
}
