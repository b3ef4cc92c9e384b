package htmx

import (
	"net/http"
	"strings"
)

// Events the league pages listen for.
const (
	EventLeaguesChanged   = "refreshLeaguesList"
	EventStandingsChanged = "refreshStandings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger asks htmx to fire the given client-side events after the swap.
func Trigger(w http.ResponseWriter, events ...string) {
	if len(events) == 0 {
		return
	}
	w.Header().Set("HX-Trigger", strings.Join(events, ", "))
}
