package main

import (
	"net/http"

	"github.com/myrjola/masks/internal/board"
	"github.com/myrjola/masks/internal/models"
)

func (app *application) apiBoard(w http.ResponseWriter, r *http.Request) {
	b, err := app.investigation.Board(r.Context())
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, b)
}

func (app *application) apiCreateNode(w http.ResponseWriter, r *http.Request) {
	var in models.NodeInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	pos := app.canvas().Clamp(board.Point{X: in.X, Y: in.Y})
	in.X, in.Y = pos.X, pos.Y
	n, err := app.investigation.CreateNode(r.Context(), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("node", "create")
	app.writeJSON(w, r, http.StatusCreated, n)
}

func (app *application) apiDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err == nil {
		err = app.investigation.DeleteNode(r.Context(), id)
	}
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("node", "delete")
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Node deleted successfully"})
}

func (app *application) apiCreateConnection(w http.ResponseWriter, r *http.Request) {
	var in models.ConnectionInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	c, err := app.investigation.CreateConnection(r.Context(), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("connection", "create")
	app.writeJSON(w, r, http.StatusCreated, c)
}

func (app *application) apiDeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err == nil {
		err = app.investigation.DeleteConnection(r.Context(), id)
	}
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("connection", "delete")
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Connection deleted successfully"})
}
