package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	registry := NewRegistry(map[string]Func{
		"greet": func(ctx context.Context, args map[string]any) (string, error) {
			name, _ := args["name"].(string)
			return "Hello " + name, nil
		},
		"broken": func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("backend unavailable")
		},
	})

	assert.Equal(t, "Hello Ada", registry.Dispatch(context.Background(), "greet", map[string]any{"name": "Ada"}))
	assert.Equal(t, UnknownFunctionResult, registry.Dispatch(context.Background(), "missing", nil))
	assert.Equal(t, "An error occurred: backend unavailable", registry.Dispatch(context.Background(), "broken", nil))
}

func TestRegistryHas(t *testing.T) {
	registry := NewRegistry(map[string]Func{
		"greet": func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	})
	assert.True(t, registry.Has("greet"))
	assert.False(t, registry.Has("missing"))
}

func TestRegistryCopiesInput(t *testing.T) {
	funcs := map[string]Func{
		"greet": func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	}
	registry := NewRegistry(funcs)
	delete(funcs, "greet")
	assert.True(t, registry.Has("greet"))
}

type fakeCalendar struct {
	title string
	start time.Time
	end   time.Time
	err   error
	calls int
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, title, description string, start, end time.Time) error {
	f.calls++
	f.title = title
	f.start = start
	f.end = end
	return f.err
}

func TestBookAppointment(t *testing.T) {
	calendar := &fakeCalendar{}
	book := BookAppointment(calendar)

	result, err := book(context.Background(), map[string]any{
		"title":       "Kitchen remodel consultation",
		"description": "Follow-up with Ada",
		"start":       "2024-06-03T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Appointment booked successfully.", result)
	assert.Equal(t, "Kitchen remodel consultation", calendar.title)
	assert.Equal(t, time.Hour, calendar.end.Sub(calendar.start))
}

func TestBookAppointmentWithoutOffset(t *testing.T) {
	calendar := &fakeCalendar{}
	book := BookAppointment(calendar)

	// The agent frequently omits the timezone offset.
	_, err := book(context.Background(), map[string]any{"start": "2024-06-03T10:00:00"})
	require.NoError(t, err)
	assert.Equal(t, 1, calendar.calls)
}

func TestBookAppointmentInvalidStart(t *testing.T) {
	calendar := &fakeCalendar{}
	book := BookAppointment(calendar)

	_, err := book(context.Background(), map[string]any{"start": "next tuesday"})
	require.Error(t, err)
	assert.Zero(t, calendar.calls)
}

func TestBookAppointmentCalendarFailure(t *testing.T) {
	calendar := &fakeCalendar{err: errors.New("calendar unreachable")}
	book := BookAppointment(calendar)

	_, err := book(context.Background(), map[string]any{"start": "2024-06-03T10:00:00Z"})
	require.Error(t, err)
}
