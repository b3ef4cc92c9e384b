// Package ratelimit throttles password login attempts.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config holds login limit settings.
type Config struct {
	MaxFailures    int           // Failed attempts per email before lockout
	Lockout        time.Duration // How long an email stays locked
	MaxIPPerWindow int           // Attempts per client IP per window
	IPWindow       time.Duration

	// Clock for testing (nil uses real time)
	Clock clockwork.Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFailures:    5,
		Lockout:        15 * time.Minute,
		MaxIPPerWindow: 30,
		IPWindow:       time.Hour,
	}
}

// Result is the outcome of a limit check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

type attempts struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time
}

// Limiter tracks login attempts per email and per client IP in memory.
type Limiter struct {
	config *Config
	clock  clockwork.Clock

	mu     sync.Mutex
	byUser map[string]*attempts
	byIP   map[string]*attempts

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byUser:        make(map[string]*attempts),
		byIP:          make(map[string]*attempts),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckLogin reports whether a login attempt for email from ip may proceed.
// It does not record anything.
func (l *Limiter) CheckLogin(email, ip string) Result {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if a := l.byUser[l.hashKey("user:", normalizeEmail(email))]; a != nil && !a.lockedAt.IsZero() {
		if elapsed := now.Sub(a.lockedAt); elapsed < l.config.Lockout {
			return Result{RetryAfter: l.config.Lockout - elapsed, Reason: "lockout"}
		}
	}

	if a := l.byIP[l.hashKey("ip:", ip)]; a != nil {
		if elapsed := now.Sub(a.firstAt); elapsed < l.config.IPWindow && a.count >= l.config.MaxIPPerWindow {
			return Result{RetryAfter: l.config.IPWindow - elapsed, Reason: "ip_limit"}
		}
	}

	return Result{Allowed: true}
}

// RecordFailure counts a failed login. It reports true when the failure
// locked the email out.
func (l *Limiter) RecordFailure(email, ip string) (lockedOut bool) {
	now := l.clock.Now()
	userKey := l.hashKey("user:", normalizeEmail(email))

	l.mu.Lock()
	defer l.mu.Unlock()

	a := l.byUser[userKey]
	if a == nil || (!a.lockedAt.IsZero() && now.Sub(a.lockedAt) >= l.config.Lockout) {
		a = &attempts{firstAt: now}
		l.byUser[userKey] = a
	}
	a.count++
	a.lastAt = now
	if a.count >= l.config.MaxFailures && a.lockedAt.IsZero() {
		a.lockedAt = now
		lockedOut = true
	}

	l.recordIP(ip, now)
	return lockedOut
}

// RecordSuccess clears the email's failures and still counts against the IP.
func (l *Limiter) RecordSuccess(email, ip string) {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.byUser, l.hashKey("user:", normalizeEmail(email)))
	l.recordIP(ip, now)
}

func (l *Limiter) recordIP(ip string, now time.Time) {
	key := l.hashKey("ip:", ip)
	a := l.byIP[key]
	if a == nil || now.Sub(a.firstAt) >= l.config.IPWindow {
		l.byIP[key] = &attempts{count: 1, firstAt: now, lastAt: now}
		return
	}
	a.count++
	a.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := l.clock.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.Chan():
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, a := range l.byUser {
		if now.Sub(a.lastAt) > l.config.Lockout+l.config.IPWindow {
			delete(l.byUser, k)
		}
	}
	for k, a := range l.byIP {
		if now.Sub(a.lastAt) > l.config.IPWindow {
			delete(l.byIP, k)
		}
	}
}

// ClientIP returns the caller's address. With trustProxy it takes the
// rightmost public X-Forwarded-For entry, then X-Real-IP.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

func isPrivateIP(raw string) bool {
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// MaskEmail hides most of the local part for logs.
func MaskEmail(email string) string {
	email = normalizeEmail(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// LogLimited records a blocked login attempt.
func LogLimited(email, ip string, result Result) {
	log.Warn().
		Str("event", "login_rate_limited").
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("reason", result.Reason).
		Dur("retry_after", result.RetryAfter).
		Msg("Login attempt rate limited")
}
