package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/masks/internal/errors"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// healthy reports whether the server can reach its database. Clients waking up a sleeping backend poll it until
// it answers 200 OK.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	if err := app.db.ReadOnly.PingContext(r.Context()); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "database unreachable", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
		return
	}
	app.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
