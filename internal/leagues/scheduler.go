package leagues

import (
	"errors"
	"fmt"
	"strings"
	"time"

	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
)

type ScheduledGame struct {
	LeagueID int64
	Round    int
	HomeTeam dbgen.Team
	AwayTeam dbgen.Team
	GameDate time.Time
}

// GenerateRoundRobinSchedule pairs every team with every other team once and
// plays one round per week on gameDay, starting with the first gameDay on or
// after startDate.
func GenerateRoundRobinSchedule(leagueID int64, teams []dbgen.Team, startDate, endDate time.Time, gameDay time.Weekday) ([]ScheduledGame, error) {
	if leagueID <= 0 {
		return nil, errors.New("league ID is required")
	}
	if len(teams) < 2 {
		return nil, errors.New("at least two teams are required")
	}
	startDate = DateOnly(startDate)
	endDate = DateOnly(endDate)
	if endDate.Before(startDate) {
		return nil, errors.New("start date must be on or before end date")
	}

	pairs := buildRoundRobinPairs(teams)
	gameDates := buildGameDates(startDate, endDate, gameDay)

	rounds := 0
	for _, pairing := range pairs {
		if pairing.Round > rounds {
			rounds = pairing.Round
		}
	}
	if len(gameDates) < rounds {
		return nil, fmt.Errorf("insufficient game dates: need %d rounds but only %d %s dates available", rounds, len(gameDates), gameDay)
	}

	schedule := make([]ScheduledGame, 0, len(pairs))
	for _, pairing := range pairs {
		schedule = append(schedule, ScheduledGame{
			LeagueID: leagueID,
			Round:    pairing.Round,
			HomeTeam: pairing.HomeTeam,
			AwayTeam: pairing.AwayTeam,
			GameDate: gameDates[pairing.Round-1],
		})
	}
	return schedule, nil
}

// ParseGameDay accepts a weekday name such as "tuesday" or "Tue".
func ParseGameDay(raw string) (time.Weekday, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) >= 3 {
		for day := time.Sunday; day <= time.Saturday; day++ {
			if strings.HasPrefix(strings.ToLower(day.String()), raw) {
				return day, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("game_day must be a weekday name")
}

type roundPair struct {
	Round    int
	HomeTeam dbgen.Team
	AwayTeam dbgen.Team
}

func buildRoundRobinPairs(teams []dbgen.Team) []roundPair {
	working := make([]*dbgen.Team, 0, len(teams)+1)
	for i := range teams {
		working = append(working, &teams[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	rounds := len(working) - 1
	pairs := make([]roundPair, 0, rounds*len(working)/2)

	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil || right == nil {
				continue
			}
			home := *left
			away := *right
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, roundPair{
				Round:    round + 1,
				HomeTeam: home,
				AwayTeam: away,
			})
		}
		rotateTeams(working)
	}

	return pairs
}

func rotateTeams(teams []*dbgen.Team) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}

func buildGameDates(startDate, endDate time.Time, gameDay time.Weekday) []time.Time {
	offset := (int(gameDay) - int(startDate.Weekday()) + 7) % 7
	var dates []time.Time
	for date := startDate.AddDate(0, 0, offset); !date.After(endDate); date = date.AddDate(0, 0, 7) {
		dates = append(dates, date)
	}
	return dates
}
