package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

const (
	RegistrationStatusPending    = "pending"
	RegistrationStatusActive     = "active"
	RegistrationStatusWaitlisted = "waitlisted"
	RegistrationStatusCancelled  = "cancelled"

	minRank            = 1
	maxRank            = 10
	defaultPhoneRegion = "US"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationClosed   = errors.New("registration is closed")
	ErrAlreadyRegistered    = errors.New("already registered for this league")
)

// RegistrationOpenAt reports whether the registration window is open at now.
// The window opens at noon on registration_open and closes at the end of
// registration_close, both in loc. Unset dates mean the window is closed.
func RegistrationOpenAt(league dbgen.League, loc *time.Location, now time.Time) bool {
	if !league.RegistrationOpen.Valid || !league.RegistrationClose.Valid {
		return false
	}

	opensAt := noonIn(league.RegistrationOpen.Time, loc)
	closesAt := dayStartIn(league.RegistrationClose.Time, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)

	return opensAt.Before(now) && closesAt.After(now)
}

// noonIn is 12:00 on the wall clock of date's calendar day in loc.
func noonIn(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	date = date.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, loc)
}

// RegistrationFor returns the user's registration for the league.
func RegistrationFor(ctx context.Context, q *dbgen.Queries, leagueID, userID int64) (dbgen.Registration, error) {
	if q == nil {
		return dbgen.Registration{}, errors.New("queries are required")
	}
	registration, err := q.GetRegistrationForUser(ctx, dbgen.GetRegistrationForUserParams{
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Registration{}, ErrRegistrationNotFound
		}
		return dbgen.Registration{}, err
	}
	return registration, nil
}

// RegistrationRequest is what a player submits to join a league.
type RegistrationRequest struct {
	UserID     int64
	Role       string
	GRank      *int64
	SelfRank   *int64
	PairUserID *int64
	Phone      string
	Notes      string
}

// RegistrationContext carries the facts PlanRegistration needs beyond the request.
type RegistrationContext struct {
	Now       time.Time
	Location  *time.Location
	Comped    bool
	RoleCount int64
	CanManage bool
}

// RegistrationPlan is the outcome of an accepted registration request.
type RegistrationPlan struct {
	Role      string
	Status    string
	AmountDue int64
	Phone     string
}

// PlanRegistration checks a registration request against the league's options and
// decides its status and the amount due.
func PlanRegistration(league dbgen.League, req RegistrationRequest, rc RegistrationContext) (RegistrationPlan, error) {
	if !rc.CanManage && !RegistrationOpenAt(league, rc.Location, rc.Now) {
		return RegistrationPlan{}, ErrRegistrationClosed
	}

	limits, err := DecodePlayerLimit(league.PlayerLimit)
	if err != nil {
		return RegistrationPlan{}, err
	}

	var errs ValidationErrors
	role := NormalizeRole(req.Role)
	if len(limits) > 0 {
		if _, ok := limits[role]; !ok {
			roles := make([]string, 0, len(limits))
			for limitRole := range limits {
				roles = append(roles, limitRole)
			}
			sort.Strings(roles)
			errs.add("role", "must be one of "+strings.Join(roles, ", "))
		}
	}

	if league.RequireGrank && req.GRank == nil {
		errs.add("g_rank", "is required for this league")
	}
	if req.GRank != nil && !rankInRange(*req.GRank) {
		errs.add("g_rank", fmt.Sprintf("must be between %d and %d", minRank, maxRank))
	}

	if req.SelfRank != nil {
		if !league.AllowSelfRank {
			errs.add("self_rank", "is not allowed for this league")
		} else if !rankInRange(*req.SelfRank) {
			errs.add("self_rank", fmt.Sprintf("must be between %d and %d", minRank, maxRank))
		}
	}

	if req.PairUserID != nil {
		if !league.AllowPairs {
			errs.add("pair_user_id", "is not allowed for this league")
		} else if *req.PairUserID == req.UserID {
			errs.add("pair_user_id", "must be another player")
		} else if *req.PairUserID <= 0 {
			errs.add("pair_user_id", "must be a positive integer")
		}
	}

	phone := ""
	if strings.TrimSpace(req.Phone) != "" {
		normalized, err := NormalizePhone(req.Phone)
		if err != nil {
			errs.add("phone", "must be a valid phone number")
		}
		phone = normalized
	}

	if len(errs) > 0 {
		return RegistrationPlan{}, errs
	}

	amountDue := league.Price
	if rc.Comped {
		amountDue = 0
	}

	status := RegistrationStatusPending
	switch {
	case limitReached(limits, role, rc.RoleCount):
		status = RegistrationStatusWaitlisted
	case amountDue == 0:
		status = RegistrationStatusActive
	}

	return RegistrationPlan{
		Role:      role,
		Status:    status,
		AmountDue: amountDue,
		Phone:     phone,
	}, nil
}

// NormalizePhone parses a phone number and formats it as E.164.
func NormalizePhone(raw string) (string, error) {
	parsed, err := phonenumbers.Parse(strings.TrimSpace(raw), defaultPhoneRegion)
	if err != nil {
		return "", fmt.Errorf("parse phone: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", errors.New("phone number is not valid")
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func limitReached(limits map[string]int, role string, count int64) bool {
	limit, ok := limits[role]
	if !ok {
		return false
	}
	return count >= int64(limit)
}

func rankInRange(rank int64) bool {
	return rank >= minRank && rank <= maxRank
}
