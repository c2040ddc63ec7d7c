package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/screens"
	"github.com/myrjola/masks/internal/validation"
)

const monthLayout = "2006-01"

type calendarTemplateData struct {
	BaseTemplateData
	Banner      bannerData
	Month       time.Time
	Prev        string
	Next        string
	Weekdays    []string
	Weeks       [][]screens.Day
	Selected    screens.Day
	HasSelected bool
	Upcoming    []models.CalendarEvent
	Form        models.CalendarEventInput
	Errors      map[string]string
	EventTypes  []models.EventType
}

// calendarScreen opens the month of the month query parameter, falling back to the month of the selected day and
// then to the current month.
func (app *application) calendarScreen(r *http.Request) *screens.CalendarScreen {
	s := screens.NewCalendarScreen(app.now())
	query := r.URL.Query()
	if day, err := time.Parse(time.DateOnly, query.Get("day")); err == nil {
		s.Show(day)
		s.Select(day)
	}
	if month, err := time.Parse(monthLayout, query.Get("month")); err == nil {
		s.Show(month)
	}
	return s
}

func (app *application) calendarPage(w http.ResponseWriter, r *http.Request) {
	app.renderCalendar(w, r, http.StatusOK, models.CalendarEventInput{Type: models.EventTypeSession}, nil)
}

func (app *application) renderCalendar(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form models.CalendarEventInput,
	fieldErrors map[string]string,
) {
	s := app.calendarScreen(r)
	banner := bannerData{Retry: r.URL.RequestURI(), Dismiss: "/calendar"}
	// The whole calendar is loaded so that upcoming events beyond the shown month are listed too.
	events, err := app.calendar.List(r.Context(), "", "")
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "load events", errors.SlogError(err))
		banner.Error = "Failed to fetch events"
	}
	s.Load(events)

	if form.Date == "" {
		if day, ok := s.Selected(); ok {
			form.Date = day.Date.Format(time.DateOnly)
		}
	}
	selected, hasSelected := s.Selected()
	month := s.Month()
	app.render(w, r, status, "calendar", calendarTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Banner:           banner,
		Month:            month,
		Prev:             month.AddDate(0, -1, 0).Format(monthLayout),
		Next:             month.AddDate(0, 1, 0).Format(monthLayout),
		Weekdays:         []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		Weeks:            s.Weeks(),
		Selected:         selected,
		HasSelected:      hasSelected,
		Upcoming:         s.Upcoming(),
		Form:             form,
		Errors:           fieldErrors,
		EventTypes:       []models.EventType{models.EventTypeSession, models.EventTypeWorkshop, models.EventTypeOther},
	})
}

// calendarQuery returns the query string that shows the month and day of date.
func calendarQuery(date string) string {
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ""
	}
	return "?" + url.Values{"month": {day.Format(monthLayout)}, "day": {date}}.Encode()
}

func (app *application) createEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p := newFormParser(r.PostForm)
	in := models.CalendarEventInput{
		Title:       p.str("title"),
		Date:        p.str("date"),
		Time:        p.str("time"),
		Description: p.str("description"),
		Type:        models.EventType(p.str("type")),
	}
	if err := app.validate.Struct(in); err != nil {
		var invalid *validation.Error
		if !errors.As(err, &invalid) {
			app.serverError(w, r, err)
			return
		}
		app.renderCalendar(w, r, http.StatusUnprocessableEntity, in, invalid.Fields)
		return
	}
	e, err := app.calendar.Create(r.Context(), in)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.metrics.Write("event", "create")
	app.flash(r, e.Title+" added to the calendar.")
	http.Redirect(w, r, "/calendar"+calendarQuery(e.Date), http.StatusSeeOther)
}

func (app *application) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := app.calendar.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.flash(r, "Event not found.")
		http.Redirect(w, r, "/calendar", http.StatusSeeOther)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if err = app.calendar.Delete(r.Context(), id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		app.serverError(w, r, err)
		return
	}
	app.metrics.Write("event", "delete")
	app.flash(r, e.Title+" deleted.")
	http.Redirect(w, r, "/calendar"+calendarQuery(e.Date), http.StatusSeeOther)
}
