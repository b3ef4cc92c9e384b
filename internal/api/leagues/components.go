package leagues

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	leaguesvc "github.com/discleague/leaguekeeper/internal/leagues"
)

func leaguesListComponent(list []dbgen.League, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildLeaguesListHTML(list, now))
		return err
	})
}

func leagueDetailComponent(league dbgen.League, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildLeagueCardHTML(league, now))
		return err
	})
}

func leagueDeleteComponent() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="h-full flex items-center justify-center text-gray-500"><p>League deleted.</p></div>`)
		return err
	})
}

func standingsComponent(league dbgen.League, standings []leaguesvc.TeamStanding) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildStandingsHTML(league, standings))
		return err
	})
}

func buildLeaguesListHTML(list []dbgen.League, now time.Time) string {
	if len(list) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No leagues found.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<div class="grid gap-4">`)
	for _, league := range list {
		builder.WriteString(buildLeagueCardHTML(league, now))
	}
	builder.WriteString(`</div>`)
	return builder.String()
}

func buildLeagueCardHTML(league dbgen.League, now time.Time) string {
	registration := "Not scheduled"
	if league.RegistrationOpen.Valid && league.RegistrationClose.Valid {
		registration = fmt.Sprintf("%s - %s", formatLeagueDate(league.RegistrationOpen.Time), formatLeagueDate(league.RegistrationClose.Time))
	}
	badge := ""
	if leaguesvc.RegistrationOpenAt(league, location, now) {
		badge = `<span class="rounded bg-green-100 px-2 py-0.5 text-xs text-green-800">Registration open</span>`
	}

	return fmt.Sprintf(
		`<div class="rounded border bg-white p-4 shadow-sm" data-league-id="%d">
			<div class="flex flex-wrap items-center justify-between gap-2">
				<div class="text-lg font-semibold text-gray-900">%s</div>
				%s
			</div>
			<dl class="mt-3 grid grid-cols-1 gap-2 text-sm text-gray-700 sm:grid-cols-2">
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Division</dt>
					<dd>%s %s %s</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Dates</dt>
					<dd>%s - %s</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Registration</dt>
					<dd>%s</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Price</dt>
					<dd>%s</dd>
				</div>
			</dl>
		</div>`,
		league.ID,
		html.EscapeString(league.Name),
		badge,
		html.EscapeString(league.AgeDivision),
		html.EscapeString(league.Sport),
		html.EscapeString(league.Season),
		formatLeagueDate(league.StartDate),
		formatLeagueDate(league.EndDate),
		registration,
		apiutil.FormatPrice(league.Price),
	)
}

func buildStandingsHTML(league dbgen.League, standings []leaguesvc.TeamStanding) string {
	if len(standings) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No teams yet.</div>`
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`<table class="min-w-full text-sm" data-league-id="%d">`, league.ID))
	builder.WriteString(`<thead><tr><th>Rank</th><th>Team</th><th>W</th><th>L</th><th>PF</th><th>PA</th><th>Diff</th></tr></thead><tbody>`)
	for _, standing := range standings {
		rank := "-"
		if standing.Rank > 0 {
			rank = fmt.Sprintf("%d", standing.Rank)
		}
		builder.WriteString(fmt.Sprintf(
			`<tr data-team-id="%d"><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%+d</td></tr>`,
			standing.TeamID,
			rank,
			html.EscapeString(standing.TeamName),
			standing.Wins,
			standing.Losses,
			standing.PointsFor,
			standing.PointsAgainst,
			standing.PointDifferential,
		))
	}
	builder.WriteString(`</tbody></table>`)
	if league.NeedsStandingsUpdate {
		builder.WriteString(`<p class="mt-2 text-xs text-amber-700">Standings are being recalculated.</p>`)
	}
	return builder.String()
}

func formatLeagueDate(date time.Time) string {
	return date.UTC().Format("Jan 2, 2006")
}
