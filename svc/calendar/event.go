package calendar

import (
	"time"
)

// MaxFocusMinutes caps a focus session planned from a calendar event.
const MaxFocusMinutes = 120

// Event is a calendar entry normalized to absolute times.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	Link        string    `json:"link,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// Duration of the event.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// FocusPlan is a suggested preparation session for an event.
type FocusPlan struct {
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
}

// PlanFocus suggests a preparation session as long as the event, capped at
// MaxFocusMinutes. All-day events get the cap.
func (e Event) PlanFocus() FocusPlan {
	minutes := int(e.Duration() / time.Minute)
	if e.AllDay || minutes > MaxFocusMinutes {
		minutes = MaxFocusMinutes
	}
	return FocusPlan{Title: "Preparation: " + e.Title, Minutes: max(minutes, 0)}
}

type apiEvents struct {
	Items []apiEvent `json:"items"`
}

type apiEvent struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	HTMLLink    string      `json:"htmlLink"`
	Start       apiDateTime `json:"start"`
	End         apiDateTime `json:"end"`
	Attendees   []struct {
		Email string `json:"email"`
	} `json:"attendees"`
}

type apiDateTime struct {
	Date     string `json:"date"`
	DateTime string `json:"dateTime"`
}

// parse reads dateTime, or date for all-day events in loc.
func (d apiDateTime) parse(loc *time.Location) (time.Time, bool, error) {
	if d.DateTime != "" {
		t, err := time.Parse(time.RFC3339, d.DateTime)
		return t, false, err
	}
	t, err := time.ParseInLocation(time.DateOnly, d.Date, loc)
	return t, true, err
}

func (e apiEvent) toEvent(loc *time.Location) (Event, error) {
	start, allDay, err := e.Start.parse(loc)
	if err != nil {
		return Event{}, err
	}
	end, _, err := e.End.parse(loc)
	if err != nil {
		return Event{}, err
	}
	var attendees []string
	for _, a := range e.Attendees {
		if a.Email != "" {
			attendees = append(attendees, a.Email)
		}
	}
	return Event{
		ID:          e.ID,
		Title:       e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Link:        e.HTMLLink,
		Attendees:   attendees,
	}, nil
}
