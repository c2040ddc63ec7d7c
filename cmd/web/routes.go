package main

import (
	"io/fs"
	"net/http"

	"github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/masks/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		// The embedded directory is checked in, so a failure here is a build defect.
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	mux.HandleFunc("GET /health", app.healthy)
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", app.metrics.Handler())

	mux.HandleFunc("GET /api/characters", app.apiListCharacters)
	mux.HandleFunc("POST /api/characters", app.apiCreateCharacter)
	mux.HandleFunc("GET /api/characters/{id}", app.apiGetCharacter)
	mux.HandleFunc("PUT /api/characters/{id}", app.apiUpdateCharacter)
	mux.HandleFunc("DELETE /api/characters/{id}", app.apiDeleteCharacter)

	mux.HandleFunc("GET /api/sessions", app.apiListSessions)
	mux.HandleFunc("POST /api/sessions", app.apiCreateSession)
	mux.HandleFunc("GET /api/sessions/search", app.apiSearchSessions)
	mux.HandleFunc("GET /api/sessions/tags", app.apiSessionsByTags)
	mux.HandleFunc("GET /api/sessions/{id}", app.apiGetSession)
	mux.HandleFunc("PUT /api/sessions/{id}", app.apiUpdateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", app.apiDeleteSession)

	mux.HandleFunc("GET /api/investigation", app.apiBoard)
	mux.HandleFunc("POST /api/investigation/nodes", app.apiCreateNode)
	mux.HandleFunc("DELETE /api/investigation/nodes/{id}", app.apiDeleteNode)
	mux.HandleFunc("POST /api/investigation/connections", app.apiCreateConnection)
	mux.HandleFunc("DELETE /api/investigation/connections/{id}", app.apiDeleteConnection)

	mux.HandleFunc("GET /api/calendar", app.apiListEvents)
	mux.HandleFunc("POST /api/calendar", app.apiCreateEvent)
	mux.HandleFunc("GET /api/calendar/{id}", app.apiGetEvent)
	mux.HandleFunc("PUT /api/calendar/{id}", app.apiUpdateEvent)
	mux.HandleFunc("DELETE /api/calendar/{id}", app.apiDeleteEvent)

	page := alice.New(app.sessionManager.LoadAndSave, app.noSurf, middleware.MiddleWare, commonContext)

	mux.Handle("GET /{$}", page.ThenFunc(app.home))
	mux.Handle("GET /login", page.ThenFunc(app.login))

	mux.Handle("GET /characters", page.ThenFunc(app.charactersPage))
	mux.Handle("GET /characters/new", page.ThenFunc(app.newCharacterPage))
	mux.Handle("POST /characters/form", page.ThenFunc(app.submitCharacterForm))
	mux.Handle("GET /characters/{id}/detail", page.ThenFunc(app.characterDetail))
	mux.Handle("GET /characters/{id}/edit", page.ThenFunc(app.editCharacterPage))
	mux.Handle("GET /characters/{id}/delete", page.ThenFunc(app.deleteCharacterPage))
	mux.Handle("POST /characters/{id}/delete", page.ThenFunc(app.deleteCharacter))

	mux.Handle("GET /sessions", page.ThenFunc(app.sessionsPage))
	mux.Handle("GET /sessions/new", page.ThenFunc(app.newSessionPage))
	mux.Handle("POST /sessions/form", page.ThenFunc(app.submitSessionForm))
	mux.Handle("GET /sessions/{id}/detail", page.ThenFunc(app.sessionDetail))
	mux.Handle("GET /sessions/{id}/edit", page.ThenFunc(app.editSessionPage))
	mux.Handle("GET /sessions/{id}/delete", page.ThenFunc(app.deleteSessionPage))
	mux.Handle("POST /sessions/{id}/delete", page.ThenFunc(app.deleteSession))

	mux.Handle("GET /calendar", page.ThenFunc(app.calendarPage))
	mux.Handle("POST /calendar/events", page.ThenFunc(app.createEvent))
	mux.Handle("POST /calendar/events/{id}/delete", page.ThenFunc(app.deleteEvent))

	mux.Handle("GET /board", page.ThenFunc(app.boardPage))
	mux.Handle("POST /board/nodes", page.ThenFunc(app.createBoardNode))
	mux.Handle("POST /board/nodes/{id}/move", page.ThenFunc(app.moveBoardNode))
	mux.Handle("POST /board/nodes/{id}/delete", page.ThenFunc(app.deleteBoardNode))
	mux.Handle("POST /board/connections", page.ThenFunc(app.createBoardConnection))
	mux.Handle("POST /board/connections/{id}/delete", page.ThenFunc(app.deleteBoardConnection))

	// The metrics middleware wraps the mux directly because the mux sets the matched pattern on the request.
	return alice.New(
		app.recoverPanic,
		app.logRequest,
		app.corsHandler,
		app.secureHeaders,
		func(next http.Handler) http.Handler { return timeoutHandler(next, app.cfg.RequestTimeout) },
		app.metrics.Middleware,
	).Then(mux)
}
