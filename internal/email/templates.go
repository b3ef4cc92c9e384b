package email

import (
	"fmt"
	"strings"
	"time"
)

// Message is a rendered subject and plain-text body.
type Message struct {
	Subject string
	Body    string
}

type RegistrationDetails struct {
	FirstName  string
	LeagueName string
	Status     string
	AmountDue  int64
	StartDate  time.Time
	LeagueURL  string
}

type ReminderDetails struct {
	FirstName  string
	LeagueName string
	StartDate  time.Time
	LeagueURL  string
}

func formatLeagueDay(date time.Time) string {
	return date.UTC().Format("Monday, Jan 2, 2006")
}

func greeting(firstName string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", firstName)
}

// BuildRegistrationConfirmation renders the email sent after a player registers.
func BuildRegistrationConfirmation(details RegistrationDetails) Message {
	var body strings.Builder
	body.WriteString(greeting(details.FirstName))
	body.WriteString("\n\n")

	switch details.Status {
	case "waitlisted":
		fmt.Fprintf(&body, "%s is full for your role, so you are on the waitlist. We will email you if a spot opens.\n", details.LeagueName)
	case "active":
		fmt.Fprintf(&body, "You are registered for %s.\n", details.LeagueName)
	default:
		fmt.Fprintf(&body, "We received your registration for %s.\n", details.LeagueName)
	}
	if details.AmountDue > 0 {
		fmt.Fprintf(&body, "Amount due: $%d\n", details.AmountDue)
	}
	if !details.StartDate.IsZero() {
		fmt.Fprintf(&body, "First game day: %s\n", formatLeagueDay(details.StartDate))
	}
	if details.LeagueURL != "" {
		fmt.Fprintf(&body, "\nLeague details: %s\n", details.LeagueURL)
	}

	subject := fmt.Sprintf("Registration received: %s", details.LeagueName)
	if details.Status == "waitlisted" {
		subject = fmt.Sprintf("Waitlisted: %s", details.LeagueName)
	}
	return Message{Subject: subject, Body: body.String()}
}

// BuildLeagueStartReminder renders the day-before reminder.
func BuildLeagueStartReminder(details ReminderDetails) Message {
	var body strings.Builder
	body.WriteString(greeting(details.FirstName))
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "%s starts tomorrow, %s. Bring a light and a dark shirt.\n", details.LeagueName, formatLeagueDay(details.StartDate))
	if details.LeagueURL != "" {
		fmt.Fprintf(&body, "\nSchedule and teams: %s\n", details.LeagueURL)
	}
	return Message{
		Subject: fmt.Sprintf("%s starts tomorrow", details.LeagueName),
		Body:    body.String(),
	}
}
