package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// CalendarClient creates events on the sales team's calendar. The concrete
// implementation (Google Calendar, Outlook) lives outside this service; only
// the call/result contract matters here.
type CalendarClient interface {
	CreateEvent(ctx context.Context, title, description string, start, end time.Time) error
}

// BookAppointment adapts a calendar client into the voice agent's
// bookAppointment tool. Expected arguments: title, description, start
// (ISO 8601). Appointments are booked for one hour.
func BookAppointment(calendar CalendarClient) Func {
	return func(ctx context.Context, args map[string]any) (string, error) {
		title, _ := args["title"].(string)
		description, _ := args["description"].(string)
		startArg, _ := args["start"].(string)

		start, err := time.Parse(time.RFC3339, startArg)
		if err != nil {
			// Retry without an explicit offset; the agent often omits it.
			start, err = time.Parse("2006-01-02T15:04:05", startArg)
			if err != nil {
				return "", fmt.Errorf("invalid start time %q", startArg)
			}
		}

		if err := calendar.CreateEvent(ctx, title, description, start, start.Add(time.Hour)); err != nil {
			return "", err
		}
		return "Appointment booked successfully.", nil
	}
}

// LoggedCalendar records booking intents in the log without reaching any
// calendar backend. Deployments replace it with a real CalendarClient.
type LoggedCalendar struct{}

// CreateEvent logs the would-be event.
func (LoggedCalendar) CreateEvent(ctx context.Context, title, description string, start, end time.Time) error {
	logger.Base().Info("calendar event requested",
		zap.String("title", title),
		zap.Time("start", start),
		zap.Time("end", end))
	return nil
}
