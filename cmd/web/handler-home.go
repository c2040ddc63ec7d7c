package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/screens"
)

const homeUpcomingLimit = 3

type homeTemplateData struct {
	BaseTemplateData
	Characters int
	Sessions   int
	Upcoming   []models.CalendarEvent
}

// home greets the group with the size of the campaign and the next planned dates.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := homeTemplateData{BaseTemplateData: app.newBaseTemplateData(r)}

	if characters, err := app.characters.List(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "count characters", errors.SlogError(err))
	} else {
		data.Characters = len(characters)
	}
	if sessions, err := app.sessions.List(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "count sessions", errors.SlogError(err))
	} else {
		data.Sessions = len(sessions)
	}

	cal := screens.NewCalendarScreen(app.now())
	events, err := app.calendar.List(ctx, app.now().Format("2006-01-02"), "")
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "list upcoming events", errors.SlogError(err))
	}
	cal.Load(events)
	data.Upcoming = cal.Upcoming()
	if len(data.Upcoming) > homeUpcomingLimit {
		data.Upcoming = data.Upcoming[:homeUpcomingLimit]
	}

	app.render(w, r, http.StatusOK, "home", data)
}

// login shows the sign-in form. Accounts are out of scope so the form only leads back home.
func (app *application) login(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "login", app.newBaseTemplateData(r))
}
