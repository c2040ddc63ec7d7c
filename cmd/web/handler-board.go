package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/masks/internal/board"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/screens"
	"github.com/myrjola/masks/internal/validation"
)

type boardTemplateData struct {
	BaseTemplateData
	Banner      bannerData
	Board       *board.Board
	Segments    []board.Segment
	NodeWidth   int
	NodeHeight  int
	Connecting  models.Node
	IsConnected bool
	Targets     []models.Node
	Form        models.NodeInput
	Errors      map[string]string
	Schemas     []models.NodeSchema
	NodeTypes   []models.NodeType
}

// boardPositionsSessionKey holds the nodes moved on the board page. Moves live in the session only.
const boardPositionsSessionKey = "boardPositions"

// canvas returns an empty board of the configured size.
func (app *application) canvas() *board.Board {
	return board.New(models.Board{}, float64(app.cfg.BoardWidth), float64(app.cfg.BoardHeight))
}

// loadBoard fetches the stored board onto a canvas of the configured size and applies the moves of the
// session. A failed fetch leaves the canvas empty and raises the banner.
func (app *application) loadBoard(r *http.Request) (*board.Controller, bannerData) {
	banner := bannerData{Retry: r.URL.RequestURI(), Dismiss: "/board"}
	stored, err := app.investigation.Board(r.Context())
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "load board", errors.SlogError(err))
		banner.Error = "Failed to fetch the investigation board"
		stored = &models.Board{}
	}
	b := board.New(*stored, float64(app.cfg.BoardWidth), float64(app.cfg.BoardHeight))
	for id, p := range app.movedNodes(r) {
		b.Move(id, p)
	}
	return board.NewController(b), banner
}

// movedNodes returns the top-left corners of the nodes moved in this session by node id.
func (app *application) movedNodes(r *http.Request) map[int64]board.Point {
	moved := make(map[int64]board.Point)
	raw := app.sessionManager.GetString(r.Context(), boardPositionsSessionKey)
	if raw == "" {
		return moved
	}
	if err := json.Unmarshal([]byte(raw), &moved); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "discard board positions", errors.SlogError(err))
		app.sessionManager.Remove(r.Context(), boardPositionsSessionKey)
		return make(map[int64]board.Point)
	}
	return moved
}

func (app *application) saveMovedNodes(r *http.Request, moved map[int64]board.Point) error {
	raw, err := json.Marshal(moved)
	if err != nil {
		return errors.Wrap(err, "marshal board positions")
	}
	app.sessionManager.Put(r.Context(), boardPositionsSessionKey, string(raw))
	return nil
}

func (app *application) boardPage(w http.ResponseWriter, r *http.Request) {
	app.renderBoard(w, r, http.StatusOK, models.NodeInput{Schema: models.NodeSchemaBoard}, nil)
}

func (app *application) renderBoard(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form models.NodeInput,
	fieldErrors map[string]string,
) {
	ctrl, banner := app.loadBoard(r)
	data := boardTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Banner:           banner,
		Board:            ctrl.Board(),
		Segments:         ctrl.Board().Segments(),
		NodeWidth:        board.NodeWidth,
		NodeHeight:       board.NodeHeight,
		Form:             form,
		Errors:           fieldErrors,
		Schemas:          []models.NodeSchema{models.NodeSchemaBoard, models.NodeSchemaCasefile},
		NodeTypes: []models.NodeType{
			models.NodeTypeEvidence, models.NodeTypePerson, models.NodeTypeLocation,
			models.NodeTypeTestimony, models.NodeTypeSuspect,
		},
	}

	if id, err := strconv.ParseInt(r.URL.Query().Get("connect"), 10, 64); err == nil && ctrl.BeginConnect(id) {
		from, _ := ctrl.Connecting()
		data.Connecting, data.IsConnected = ctrl.Board().Node(from)
		for _, n := range ctrl.Board().Nodes {
			if n.ID != from {
				data.Targets = append(data.Targets, n)
			}
		}
	}
	app.render(w, r, status, "board", data)
}

func (app *application) createBoardNode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p := newFormParser(r.PostForm)
	in := models.NodeInput{
		Schema:     models.NodeSchema(p.str("schema")),
		Type:       models.NodeType(p.str("type")),
		Title:      p.str("title"),
		Content:    p.str("content"),
		Date:       p.str("date"),
		Importance: models.Importance(p.str("importance")),
		Status:     models.NodeStatus(p.str("status")),
		Tags:       screens.ParseList(r.PostForm.Get("tags")),
	}
	positioned := p.str("x") != "" || p.str("y") != ""
	if positioned {
		in.X = float64(p.number("x"))
		in.Y = float64(p.number("y"))
	}
	fieldErrors := p.errors
	if err := app.validate.Struct(in); err != nil {
		var invalid *validation.Error
		if !errors.As(err, &invalid) {
			app.serverError(w, r, err)
			return
		}
		mergeFieldErrors(fieldErrors, invalid.Fields)
	}
	if len(fieldErrors) > 0 {
		app.renderBoard(w, r, http.StatusUnprocessableEntity, in, fieldErrors)
		return
	}

	// The canvas decides where a node without a position lands and keeps the others inside its bounds.
	ctrl, _ := app.loadBoard(r)
	placed := ctrl.AddNode(in, positioned)
	in.Schema, in.X, in.Y = placed.Schema, placed.X, placed.Y

	n, err := app.investigation.CreateNode(r.Context(), in)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.metrics.Write("node", "create")
	app.flash(r, n.Title+" pinned to the board.")
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

// moveBoardNode replays a drag from the pointer-down point to the pointer-up point. The new position is kept in
// the session and never stored.
func (app *application) moveBoardNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		app.clientError(w, r, http.StatusNotFound)
		return
	}
	if err = r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p := newFormParser(r.PostForm)
	down := board.Point{X: p.float("down_x"), Y: p.float("down_y")}
	up := board.Point{X: p.float("up_x"), Y: p.float("up_y")}
	if len(p.errors) > 0 {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	ctrl, _ := app.loadBoard(r)
	if !ctrl.PointerDown(down) {
		app.flash(r, "Node not found.")
		http.Redirect(w, r, "/board", http.StatusSeeOther)
		return
	}
	if grabbed, _ := ctrl.Dragged(); grabbed != id {
		ctrl.PointerUp()
		app.flash(r, "Another node lies on top of that one.")
		http.Redirect(w, r, "/board", http.StatusSeeOther)
		return
	}
	ctrl.PointerMove(up)
	b := ctrl.Board()
	if up.X < 0 || up.Y < 0 || up.X > b.Width || up.Y > b.Height {
		ctrl.PointerLeave()
	} else {
		ctrl.PointerUp()
	}

	n, _ := b.Node(id)
	moved := app.movedNodes(r)
	moved[id] = board.Point{X: n.X, Y: n.Y}
	if err = app.saveMovedNodes(r, moved); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.flash(r, n.Title+" moved.")
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (app *application) deleteBoardNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err == nil {
		err = app.investigation.DeleteNode(r.Context(), id)
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		app.flash(r, "Node not found.")
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		app.metrics.Write("node", "delete")
		app.flash(r, "Node removed.")
	}
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (app *application) createBoardConnection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p := newFormParser(r.PostForm)
	in := models.ConnectionInput{
		From:  int64(p.number("from")),
		To:    int64(p.number("to")),
		Label: p.str("label"),
	}
	if len(p.errors) > 0 {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	err := app.validate.Struct(in)
	if err == nil {
		_, err = app.investigation.CreateConnection(r.Context(), in)
	}
	var invalid *validation.Error
	switch {
	case errors.As(err, &invalid), errors.Is(err, repositories.ErrSelfConnection):
		app.flash(r, "Pick two different nodes to connect.")
	case errors.Is(err, repositories.ErrNotFound):
		app.flash(r, "Node not found.")
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		app.metrics.Write("connection", "create")
		app.flash(r, "Nodes connected.")
	}
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (app *application) deleteBoardConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err == nil {
		err = app.investigation.DeleteConnection(r.Context(), id)
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		app.flash(r, "Connection not found.")
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		app.metrics.Write("connection", "delete")
		app.flash(r, "Connection removed.")
	}
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}
