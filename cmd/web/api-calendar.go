package main

import (
	"net/http"

	"github.com/myrjola/masks/internal/models"
)

// apiListEvents lists events between the optional inclusive bounds from and to, both YYYY-MM-DD.
func (app *application) apiListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	events, err := app.calendar.List(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, events)
}

func (app *application) apiGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := app.calendar.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, e)
}

func (app *application) apiCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.CalendarEventInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	e, err := app.calendar.Create(r.Context(), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("event", "create")
	app.writeJSON(w, r, http.StatusCreated, e)
}

func (app *application) apiUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.CalendarEventInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	e, err := app.calendar.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("event", "update")
	app.writeJSON(w, r, http.StatusOK, e)
}

func (app *application) apiDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := app.calendar.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("event", "delete")
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}
