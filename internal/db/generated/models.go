package dbgen

import (
	"database/sql"
	"time"
)

type CompGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Game struct {
	ID         int64         `json:"id"`
	LeagueID   int64         `json:"leagueId"`
	Round      int64         `json:"round"`
	HomeTeamID int64         `json:"homeTeamId"`
	AwayTeamID int64         `json:"awayTeamId"`
	GameDate   time.Time     `json:"gameDate"`
	HomeScore  sql.NullInt64 `json:"homeScore"`
	AwayScore  sql.NullInt64 `json:"awayScore"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type League struct {
	ID                   int64        `json:"id"`
	Name                 string       `json:"name"`
	AgeDivision          string       `json:"ageDivision"`
	Season               string       `json:"season"`
	Sport                string       `json:"sport"`
	StartDate            time.Time    `json:"startDate"`
	EndDate              time.Time    `json:"endDate"`
	RegistrationOpen     sql.NullTime `json:"registrationOpen"`
	RegistrationClose    sql.NullTime `json:"registrationClose"`
	NeedsStandingsUpdate bool         `json:"needsStandingsUpdate"`
	PlayerLimit          string       `json:"playerLimit"`
	Price                int64        `json:"price"`
	Description          string       `json:"description"`
	RequireGrank         bool         `json:"requireGrank"`
	AllowSelfRank        bool         `json:"allowSelfRank"`
	AllowPairs           bool         `json:"allowPairs"`
	CoreType             string       `json:"coreType"`
	EosTourney           bool         `json:"eosTourney"`
	MstTourney           bool         `json:"mstTourney"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

type Registration struct {
	ID         int64         `json:"id"`
	LeagueID   int64         `json:"leagueId"`
	UserID     int64         `json:"userId"`
	Role       string        `json:"role"`
	Status     string        `json:"status"`
	GRank      sql.NullInt64 `json:"gRank"`
	SelfRank   sql.NullInt64 `json:"selfRank"`
	PairUserID sql.NullInt64 `json:"pairUserId"`
	Phone      string        `json:"phone"`
	AmountDue  int64         `json:"amountDue"`
	Notes      string        `json:"notes"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type Team struct {
	ID            int64         `json:"id"`
	LeagueID      int64         `json:"leagueId"`
	Name          string        `json:"name"`
	LeagueRank    sql.NullInt64 `json:"leagueRank"`
	Wins          int64         `json:"wins"`
	Losses        int64         `json:"losses"`
	PointsFor     int64         `json:"pointsFor"`
	PointsAgainst int64         `json:"pointsAgainst"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Phone        sql.NullString `json:"phone"`
	PasswordHash sql.NullString `json:"-"`
	IsAdmin      bool           `json:"isAdmin"`
	CreatedAt    time.Time      `json:"createdAt"`
}
