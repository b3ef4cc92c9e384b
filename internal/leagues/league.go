package leagues

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

const (
	MinPrice = 1
	MaxPrice = 249
)

const (
	AgeDivisionAdult   = "adult"
	AgeDivisionJuniors = "juniors"

	SportUltimate   = "ultimate"
	SportGoaltimate = "goaltimate"
)

var (
	ageDivisions = []string{AgeDivisionAdult, AgeDivisionJuniors}
	seasons      = []string{"fall", "winter", "spring", "summer", "saturday"}
	sports       = []string{SportUltimate, SportGoaltimate}
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidationErrors collects every invalid field of an input.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fieldErr := range e {
		parts = append(parts, fieldErr.Error())
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field has at least one error.
func (e ValidationErrors) Has(field string) bool {
	for _, fieldErr := range e {
		if fieldErr.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationErrors) add(field, reason string) {
	*e = append(*e, ValidationError{Field: field, Reason: reason})
}

// LeagueInput holds the editable fields of a league.
type LeagueInput struct {
	Name              string
	AgeDivision       string
	Season            string
	Sport             string
	StartDate         time.Time
	EndDate           time.Time
	RegistrationOpen  *time.Time
	RegistrationClose *time.Time
	PlayerLimit       map[string]int
	Price             int64
	Description       string
	RequireGrank      bool
	AllowSelfRank     bool
	AllowPairs        bool
	CoreType          string
	EosTourney        bool
	MstTourney        bool
}

// DefaultLeagueInput returns the defaults a new league starts from, relative to today.
func DefaultLeagueInput(today time.Time) LeagueInput {
	today = DateOnly(today)
	registrationOpen := today.AddDate(0, 0, 14)
	registrationClose := today.AddDate(0, 0, 28)
	return LeagueInput{
		StartDate:         today.AddDate(0, 0, 35),
		EndDate:           today.AddDate(0, 0, 105),
		RegistrationOpen:  &registrationOpen,
		RegistrationClose: &registrationClose,
		PlayerLimit:       map[string]int{},
		RequireGrank:      false,
		AllowSelfRank:     true,
		AllowPairs:        true,
		EosTourney:        true,
		MstTourney:        false,
	}
}

// Normalize trims text fields, lowercases enumerations and truncates dates to calendar days.
func (in LeagueInput) Normalize() LeagueInput {
	in.Name = strings.TrimSpace(in.Name)
	in.AgeDivision = strings.ToLower(strings.TrimSpace(in.AgeDivision))
	in.Season = strings.ToLower(strings.TrimSpace(in.Season))
	in.Sport = strings.ToLower(strings.TrimSpace(in.Sport))
	in.Description = strings.TrimSpace(in.Description)
	in.CoreType = strings.TrimSpace(in.CoreType)
	if !in.StartDate.IsZero() {
		in.StartDate = DateOnly(in.StartDate)
	}
	if !in.EndDate.IsZero() {
		in.EndDate = DateOnly(in.EndDate)
	}
	if in.RegistrationOpen != nil {
		open := DateOnly(*in.RegistrationOpen)
		in.RegistrationOpen = &open
	}
	if in.RegistrationClose != nil {
		closeDate := DateOnly(*in.RegistrationClose)
		in.RegistrationClose = &closeDate
	}
	if in.PlayerLimit != nil && len(duplicateRoles(in.PlayerLimit)) == 0 {
		limits := make(map[string]int, len(in.PlayerLimit))
		for role, limit := range in.PlayerLimit {
			limits[NormalizeRole(role)] = limit
		}
		in.PlayerLimit = limits
	}
	return in
}

// Validate checks the league invariants and returns ValidationErrors when any fail.
func (in LeagueInput) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "is required")
	}
	if in.Price < MinPrice {
		errs.add("price", "must be greater than 0")
	} else if in.Price > MaxPrice {
		errs.add("price", "must be less than 250")
	}
	if !oneOf(in.AgeDivision, ageDivisions) {
		errs.add("age_division", "must be one of "+strings.Join(ageDivisions, ", "))
	}
	if !oneOf(in.Season, seasons) {
		errs.add("season", "must be one of "+strings.Join(seasons, ", "))
	}
	if !oneOf(in.Sport, sports) {
		errs.add("sport", "must be one of "+strings.Join(sports, ", "))
	}

	if in.StartDate.IsZero() {
		errs.add("start_date", "is required")
	}
	if in.EndDate.IsZero() {
		errs.add("end_date", "is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.StartDate.After(in.EndDate) {
		errs.add("end_date", "must be on or after start_date")
	}
	if in.RegistrationOpen != nil && in.RegistrationClose != nil && in.RegistrationOpen.After(*in.RegistrationClose) {
		errs.add("registration_close", "must be on or after registration_open")
	}

	roles := make([]string, 0, len(in.PlayerLimit))
	for role := range in.PlayerLimit {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			errs.add("player_limit", "roles must not be blank")
			continue
		}
		if in.PlayerLimit[role] < 0 {
			errs.add("player_limit", fmt.Sprintf("limit for %s must be 0 or greater", role))
		}
	}

	for _, dup := range duplicateRoles(in.PlayerLimit) {
		errs.add("player_limit", fmt.Sprintf("roles %s name the same role", strings.Join(dup, ", ")))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// duplicateRoles groups player_limit keys that normalize to the same role.
// Groups and their members are sorted.
func duplicateRoles(limits map[string]int) [][]string {
	byRole := make(map[string][]string, len(limits))
	for role := range limits {
		normalized := NormalizeRole(role)
		byRole[normalized] = append(byRole[normalized], fmt.Sprintf("%q", role))
	}

	var dups [][]string
	for _, raw := range byRole {
		if len(raw) > 1 {
			sort.Strings(raw)
			dups = append(dups, raw)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i][0] < dups[j][0] })
	return dups
}

// CreateParams converts a validated input into insert parameters.
func (in LeagueInput) CreateParams() (dbgen.CreateLeagueParams, error) {
	limits, err := EncodePlayerLimit(in.PlayerLimit)
	if err != nil {
		return dbgen.CreateLeagueParams{}, err
	}
	return dbgen.CreateLeagueParams{
		Name:              in.Name,
		AgeDivision:       in.AgeDivision,
		Season:            in.Season,
		Sport:             in.Sport,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		RegistrationOpen:  nullDate(in.RegistrationOpen),
		RegistrationClose: nullDate(in.RegistrationClose),
		PlayerLimit:       limits,
		Price:             in.Price,
		Description:       in.Description,
		RequireGrank:      in.RequireGrank,
		AllowSelfRank:     in.AllowSelfRank,
		AllowPairs:        in.AllowPairs,
		CoreType:          in.CoreType,
		EosTourney:        in.EosTourney,
		MstTourney:        in.MstTourney,
	}, nil
}

// UpdateParams converts a validated input into update parameters for league id.
func (in LeagueInput) UpdateParams(id int64) (dbgen.UpdateLeagueParams, error) {
	create, err := in.CreateParams()
	if err != nil {
		return dbgen.UpdateLeagueParams{}, err
	}
	return dbgen.UpdateLeagueParams{
		ID:                id,
		Name:              create.Name,
		AgeDivision:       create.AgeDivision,
		Season:            create.Season,
		Sport:             create.Sport,
		StartDate:         create.StartDate,
		EndDate:           create.EndDate,
		RegistrationOpen:  create.RegistrationOpen,
		RegistrationClose: create.RegistrationClose,
		PlayerLimit:       create.PlayerLimit,
		Price:             create.Price,
		Description:       create.Description,
		RequireGrank:      create.RequireGrank,
		AllowSelfRank:     create.AllowSelfRank,
		AllowPairs:        create.AllowPairs,
		CoreType:          create.CoreType,
		EosTourney:        create.EosTourney,
		MstTourney:        create.MstTourney,
	}, nil
}

// InputFromLeague returns the editable fields of a stored league.
func InputFromLeague(league dbgen.League) (LeagueInput, error) {
	limits, err := DecodePlayerLimit(league.PlayerLimit)
	if err != nil {
		return LeagueInput{}, err
	}
	in := LeagueInput{
		Name:          league.Name,
		AgeDivision:   league.AgeDivision,
		Season:        league.Season,
		Sport:         league.Sport,
		StartDate:     league.StartDate,
		EndDate:       league.EndDate,
		PlayerLimit:   limits,
		Price:         league.Price,
		Description:   league.Description,
		RequireGrank:  league.RequireGrank,
		AllowSelfRank: league.AllowSelfRank,
		AllowPairs:    league.AllowPairs,
		CoreType:      league.CoreType,
		EosTourney:    league.EosTourney,
		MstTourney:    league.MstTourney,
	}
	if league.RegistrationOpen.Valid {
		open := league.RegistrationOpen.Time
		in.RegistrationOpen = &open
	}
	if league.RegistrationClose.Valid {
		closeDate := league.RegistrationClose.Time
		in.RegistrationClose = &closeDate
	}
	return in, nil
}

// EncodePlayerLimit serializes the per-role limit table.
func EncodePlayerLimit(limits map[string]int) (string, error) {
	if len(limits) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(limits)
	if err != nil {
		return "", fmt.Errorf("encode player limit: %w", err)
	}
	return string(data), nil
}

// DecodePlayerLimit parses the stored per-role limit table.
func DecodePlayerLimit(raw string) (map[string]int, error) {
	limits := map[string]int{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return limits, nil
	}
	if err := json.Unmarshal([]byte(raw), &limits); err != nil {
		return nil, fmt.Errorf("decode player limit: %w", err)
	}
	return limits, nil
}

// StartedAt reports whether the league's first day has begun in loc.
func StartedAt(league dbgen.League, loc *time.Location, now time.Time) bool {
	return dayStartIn(league.StartDate, loc).Before(now)
}

// DateOnly returns midnight UTC of t's calendar day in t's own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in loc, as stored dates are.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}

// dayStartIn interprets a stored calendar date as midnight in loc.
func dayStartIn(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	date = date.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

func nullDate(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: DateOnly(*value), Valid: true}
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}

// NormalizeRole is the canonical form of a player_limit role key.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
