package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/discleague/leaguekeeper/internal/api/authz"
)

const (
	sessionCookieName = "leaguekeeper_session"
	sessionTTL        = 12 * time.Hour
	sessionTokenBytes = 32
)

var errAuthConfigMissing = errors.New("auth configuration missing")

type sessionRecord struct {
	UserID    int64
	ExpiresAt time.Time
}

var (
	sessionMu sync.RWMutex
	// Sessions live in memory; a restart signs everyone out.
	sessionStore = make(map[string]sessionRecord)
	clock        = clockwork.NewRealClock()
)

func isSecureCookie() bool {
	return appConfig == nil || appConfig.App.Environment != "development"
}

// CreateSession starts a session for userID, replacing any earlier ones, and
// sets the signed session cookie.
func CreateSession(w http.ResponseWriter, userID int64) error {
	if w == nil {
		return errors.New("session requires response writer")
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}
	signature, err := signToken(token)
	if err != nil {
		return err
	}

	now := clock.Now()
	expiresAt := now.Add(sessionTTL)

	sessionMu.Lock()
	for existing, session := range sessionStore {
		if session.UserID == userID || !session.ExpiresAt.After(now) {
			delete(sessionStore, existing)
		}
	}
	sessionStore[token] = sessionRecord{UserID: userID, ExpiresAt: expiresAt}
	sessionMu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token + "." + signature,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

// ClearSession ends the request's session and expires the cookie.
func ClearSession(w http.ResponseWriter, r *http.Request) {
	if r != nil {
		if token, ok := tokenFromRequest(r); ok {
			deleteSession(token)
		}
	}
	clearSessionCookie(w)
}

func clearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest resolves the signed-in user. It returns nil without error
// when there is no valid session.
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil {
		return nil, nil
	}

	token, ok := tokenFromRequest(r)
	if !ok {
		if _, err := r.Cookie(sessionCookieName); err == nil {
			clearSessionCookie(w)
		}
		return nil, nil
	}

	session, ok := getSession(token)
	if !ok {
		clearSessionCookie(w)
		return nil, nil
	}

	if queries == nil {
		return nil, errors.New("auth queries not initialized")
	}

	user, err := queries.GetUser(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			deleteSession(token)
			clearSessionCookie(w)
			return nil, nil
		}
		return nil, err
	}

	return &authz.AuthUser{
		ID:      user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}, nil
}

// tokenFromRequest returns the session token when the cookie signature checks out.
func tokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	token, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || token == "" {
		return "", false
	}
	expected, err := signToken(token)
	if err != nil {
		return "", false
	}
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return token, true
}

func signToken(token string) (string, error) {
	if appConfig == nil || appConfig.App.SecretKey == "" {
		return "", errAuthConfigMissing
	}
	mac := hmac.New(sha256.New, []byte(appConfig.App.SecretKey))
	_, _ = mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}

func getSession(token string) (sessionRecord, bool) {
	sessionMu.RLock()
	session, ok := sessionStore[token]
	sessionMu.RUnlock()
	if !ok {
		return sessionRecord{}, false
	}
	if !session.ExpiresAt.After(clock.Now()) {
		deleteSession(token)
		return sessionRecord{}, false
	}
	return session, true
}

func deleteSession(token string) {
	sessionMu.Lock()
	delete(sessionStore, token)
	sessionMu.Unlock()
}
