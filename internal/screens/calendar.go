package screens

import (
	"slices"
	"time"

	"github.com/myrjola/masks/internal/models"
)

// Day is a cell of the month grid. Blank cells pad the first week so that columns line up with weekdays.
type Day struct {
	Date   time.Time
	Blank  bool
	Today  bool
	Events []models.CalendarEvent
}

// CalendarScreen shows one month at a time with its events, weeks starting on Sunday.
type CalendarScreen struct {
	month    time.Time
	today    time.Time
	selected time.Time
	events   []models.CalendarEvent
}

// NewCalendarScreen opens on the month of now.
func NewCalendarScreen(now time.Time) *CalendarScreen {
	today := dateOf(now)
	return &CalendarScreen{
		month:  time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		today:  today,
		events: []models.CalendarEvent{},
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Month returns the first day of the shown month.
func (s *CalendarScreen) Month() time.Time {
	return s.month
}

// Show jumps to the month containing t.
func (s *CalendarScreen) Show(t time.Time) {
	s.month = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *CalendarScreen) Next() {
	s.month = s.month.AddDate(0, 1, 0)
}

func (s *CalendarScreen) Prev() {
	s.month = s.month.AddDate(0, -1, 0)
}

// Range returns the first and last date of the shown month in YYYY-MM-DD form.
func (s *CalendarScreen) Range() (string, string) {
	last := s.month.AddDate(0, 1, -1)
	return s.month.Format(time.DateOnly), last.Format(time.DateOnly)
}

func (s *CalendarScreen) Load(events []models.CalendarEvent) {
	if events == nil {
		events = []models.CalendarEvent{}
	}
	s.events = events
}

func (s *CalendarScreen) Select(day time.Time) {
	s.selected = dateOf(day)
}

// Selected returns the selected day and its events.
func (s *CalendarScreen) Selected() (Day, bool) {
	if s.selected.IsZero() {
		return Day{}, false
	}
	return s.day(s.selected), true
}

func (s *CalendarScreen) day(date time.Time) Day {
	d := Day{Date: date, Today: date.Equal(s.today), Events: []models.CalendarEvent{}}
	for _, e := range s.events {
		if e.Day().Equal(date) {
			d.Events = append(d.Events, e)
		}
	}
	return d
}

// Weeks returns the grid of the shown month, one slice of seven cells per week.
func (s *CalendarScreen) Weeks() [][]Day {
	var (
		weeks [][]Day
		week  []Day
	)
	for range int(s.month.Weekday()) {
		week = append(week, Day{Blank: true})
	}
	for date := s.month; date.Month() == s.month.Month(); date = date.AddDate(0, 0, 1) {
		week = append(week, s.day(date))
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Day{Blank: true})
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Upcoming returns the events on or after today, soonest first.
func (s *CalendarScreen) Upcoming() []models.CalendarEvent {
	upcoming := []models.CalendarEvent{}
	for _, e := range s.events {
		if !e.Day().Before(s.today) {
			upcoming = append(upcoming, e)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b models.CalendarEvent) int {
		return a.Day().Compare(b.Day())
	})
	return upcoming
}
