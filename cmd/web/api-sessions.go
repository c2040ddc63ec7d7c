package main

import (
	"net/http"

	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/screens"
)

func (app *application) apiListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := app.sessions.List(r.Context())
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sessions)
}

// apiSearchSessions matches q against title, location, summary and details ignoring case.
func (app *application) apiSearchSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := app.sessions.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sessions)
}

// apiSessionsByTags lists sessions tagged with any of the comma separated tags.
func (app *application) apiSessionsByTags(w http.ResponseWriter, r *http.Request) {
	tags := screens.ParseList(r.URL.Query().Get("tags"))
	sessions, err := app.sessions.ListByTags(r.Context(), tags)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sessions)
}

func (app *application) apiGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := app.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, s)
}

func (app *application) apiCreateSession(w http.ResponseWriter, r *http.Request) {
	var in models.SessionInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	s, err := app.sessions.Create(r.Context(), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("session", "create")
	app.writeJSON(w, r, http.StatusCreated, s)
}

func (app *application) apiUpdateSession(w http.ResponseWriter, r *http.Request) {
	var in models.SessionInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	s, err := app.sessions.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("session", "update")
	app.writeJSON(w, r, http.StatusOK, s)
}

func (app *application) apiDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("session", "delete")
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Session deleted successfully"})
}
