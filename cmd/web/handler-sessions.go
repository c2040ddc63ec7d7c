package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/screens"
	"github.com/myrjola/masks/internal/validation"
)

type sessionsTemplateData struct {
	BaseTemplateData
	Banner   bannerData
	Screen   *screens.SessionScreen
	Tags     string
	Sessions []models.Session
}

// sessionScreen loads the session notes, restricted to the tags query parameter when given, and applies the
// filter and expanded details of the query string.
func (app *application) sessionScreen(r *http.Request) *screens.SessionScreen {
	query := r.URL.Query()
	tags := screens.ParseList(query.Get("tags"))
	fetch := app.sessions.List
	if len(tags) > 0 {
		fetch = func(ctx context.Context) ([]models.Session, error) {
			return app.sessions.ListByTags(ctx, tags)
		}
	}

	s := screens.NewSessionScreen()
	if err := s.Refresh(r.Context(), fetch); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "load sessions", errors.SlogError(err))
	}
	s.SetFilter(query.Get("q"))
	for _, id := range query["expand"] {
		s.Toggle(id)
	}
	return s
}

func (app *application) sessionsPage(w http.ResponseWriter, r *http.Request) {
	s := app.sessionScreen(r)
	if s.Error() != "" {
		s.SetError(errors.New("Failed to fetch sessions"))
	}
	app.render(w, r, http.StatusOK, "sessions", sessionsTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Banner:           bannerData{Error: s.Error(), Retry: r.URL.RequestURI(), Dismiss: "/sessions"},
		Screen:           s,
		Tags:             r.URL.Query().Get("tags"),
		Sessions:         s.Visible(),
	})
}

// sessionDetail serves the expanded detail of a session note as an htmx fragment.
func (app *application) sessionDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !app.isHxRequest(w, r) {
		http.Redirect(w, r, "/sessions?"+url.Values{"expand": {id}}.Encode(), http.StatusSeeOther)
		return
	}
	s, err := app.sessions.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.renderFragment(w, r, http.StatusOK, "sessions", "session-detail", s)
}

type sessionFormTemplateData struct {
	BaseTemplateData
	Form      *screens.SessionForm
	Errors    map[string]string
	ClueTypes []models.ClueType
	ItemTypes []models.ItemType
}

func (app *application) renderSessionForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form *screens.SessionForm,
	fieldErrors map[string]string,
) {
	app.render(w, r, status, "session-form", sessionFormTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Form:             form,
		Errors:           fieldErrors,
		ClueTypes:        []models.ClueType{models.ClueTypeDocument, models.ClueTypeEvidence},
		ItemTypes: []models.ItemType{
			models.ItemTypeKey, models.ItemTypeBook, models.ItemTypeWeapon, models.ItemTypeMisc,
		},
	})
}

func (app *application) newSessionPage(w http.ResponseWriter, r *http.Request) {
	form := screens.NewSessionForm()
	form.Input.Date = app.now().Format("2006-01-02")
	app.renderSessionForm(w, r, http.StatusOK, form, nil)
}

func (app *application) editSessionPage(w http.ResponseWriter, r *http.Request) {
	s, err := app.sessions.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.renderSessionForm(w, r, http.StatusOK, screens.EditSessionForm(*s), nil)
}

// submitSessionForm either edits the clue and item rows of the form and renders it again or saves the note.
func (app *application) submitSessionForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	form, fieldErrors := parseSessionForm(r.PostForm)

	op, index := parseOp(r.PostForm.Get("op"))
	switch op {
	case "add-clue":
		form.AddClue()
	case "remove-clue":
		form.RemoveClue(index)
	case "add-item":
		form.AddItem()
	case "remove-item":
		form.RemoveItem(index)
	case "save":
		app.saveSession(w, r, form, fieldErrors)
		return
	default:
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	app.renderSessionForm(w, r, http.StatusOK, form, nil)
}

func (app *application) saveSession(
	w http.ResponseWriter,
	r *http.Request,
	form *screens.SessionForm,
	fieldErrors map[string]string,
) {
	var invalid *validation.Error
	if err := app.validate.Struct(form.Input); err != nil {
		if !errors.As(err, &invalid) {
			app.serverError(w, r, err)
			return
		}
		mergeFieldErrors(fieldErrors, invalid.Fields)
	}
	if len(fieldErrors) > 0 {
		app.renderSessionForm(w, r, http.StatusUnprocessableEntity, form, fieldErrors)
		return
	}

	var (
		s   *models.Session
		err error
		op  = "create"
	)
	if form.ID == "" {
		s, err = app.sessions.Create(r.Context(), form.Input)
	} else {
		op = "update"
		s, err = app.sessions.Update(r.Context(), form.ID, form.Input)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.metrics.Write("session", op)
	app.flash(r, s.Title+" saved.")
	http.Redirect(w, r, "/sessions?"+url.Values{"expand": {s.ID}}.Encode(), http.StatusSeeOther)
}

func (app *application) deleteSessionPage(w http.ResponseWriter, r *http.Request) {
	s := app.sessionScreen(r)
	id := r.PathValue("id")
	if !s.RequestDelete(id) {
		app.notFound(w, r)
		return
	}
	note, _ := s.PendingDelete()
	app.render(w, r, http.StatusOK, "delete", deleteTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Name:             note.Title,
		Action:           "/sessions/" + url.PathEscape(id) + "/delete",
		Cancel:           "/sessions",
	})
}

func (app *application) deleteSession(w http.ResponseWriter, r *http.Request) {
	s := app.sessionScreen(r)
	id := r.PathValue("id")
	if !s.RequestDelete(id) {
		app.flash(r, "Session not found.")
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	}
	note, _ := s.PendingDelete()
	err := s.ConfirmDelete(r.Context(), app.sessions.Delete)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		app.flash(r, "Session not found.")
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		app.metrics.Write("session", "delete")
		app.flash(r, note.Title+" deleted.")
	}
	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}
