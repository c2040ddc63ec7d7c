package board_test

import (
	"testing"

	"github.com/myrjola/masks/internal/board"
	"github.com/myrjola/masks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoBoard() *board.Board {
	return board.New(models.Board{
		Nodes: []models.Node{
			{ID: 1, Title: "Torn Letter", X: 200, Y: 100},
			{ID: 2, Title: "Wax Cylinder Recording", X: 400, Y: 150},
			{ID: 3, Title: "Village Ledger", X: 300, Y: 550},
		},
		Connections: []models.Connection{
			{ID: 1, From: 1, To: 2, Label: "ritual"},
			{ID: 2, From: 2, To: 3},
		},
	}, 1000, 800)
}

func TestController_Drag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		grab    board.Point
		release board.Point
		want    board.Point
	}{
		{name: "inside canvas", grab: board.Point{X: 210, Y: 120}, release: board.Point{X: 510, Y: 420},
			want: board.Point{X: 500, Y: 400}},
		{name: "clamped at origin", grab: board.Point{X: 250, Y: 150}, release: board.Point{X: 10, Y: -30},
			want: board.Point{X: 0, Y: 0}},
		{name: "clamped at far edges", grab: board.Point{X: 300, Y: 150}, release: board.Point{X: 1500, Y: 1500},
			want: board.Point{X: 800, Y: 700}},
		{name: "clamped on one axis", grab: board.Point{X: 200, Y: 100}, release: board.Point{X: 950, Y: 300},
			want: board.Point{X: 800, Y: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := demoBoard()
			c := board.NewController(b)

			require.True(t, c.PointerDown(tt.grab))
			assert.Equal(t, board.Dragging, c.State())
			c.PointerMove(tt.release)
			c.PointerUp()
			assert.Equal(t, board.Idle, c.State())

			n, ok := b.Node(1)
			require.True(t, ok)
			assert.Equal(t, tt.want, board.Point{X: n.X, Y: n.Y})
		})
	}
}

func TestController_PointerDown(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	c := board.NewController(b)

	assert.False(t, c.PointerDown(board.Point{X: 5, Y: 5}), "empty canvas")
	assert.Equal(t, board.Idle, c.State())

	// Nodes 1 and 2 share the edge x=400. Node 2 is painted last so it wins.
	require.True(t, c.PointerDown(board.Point{X: 400, Y: 180}))
	id, dragging := c.Dragged()
	assert.True(t, dragging)
	assert.Equal(t, int64(2), id)
	c.PointerLeave()

	// Grabbing node 1 brings it to the top.
	require.True(t, c.PointerDown(board.Point{X: 210, Y: 110}))
	c.PointerUp()
	assert.Equal(t, int64(1), b.Nodes[len(b.Nodes)-1].ID)
	require.True(t, c.PointerDown(board.Point{X: 400, Y: 180}))
	id, _ = c.Dragged()
	assert.Equal(t, int64(1), id)
}

func TestController_MoveWhileIdle(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	c := board.NewController(b)

	c.PointerMove(board.Point{X: 0, Y: 0})
	n, _ := b.Node(1)
	assert.Equal(t, board.Point{X: 200, Y: 100}, board.Point{X: n.X, Y: n.Y})

	require.True(t, c.PointerDown(board.Point{X: 200, Y: 100}))
	c.PointerLeave()
	c.PointerMove(board.Point{X: 600, Y: 600})
	n, _ = b.Node(1)
	assert.Equal(t, board.Point{X: 200, Y: 100}, board.Point{X: n.X, Y: n.Y}, "leaving the canvas ends the drag")
}

func TestBoard_Segments(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	b.Connections = append(b.Connections, models.Connection{ID: 3, From: 1, To: 42})

	segments := b.Segments()
	assert.Equal(t, []board.Segment{
		{ConnectionID: 1, From: board.Point{X: 300, Y: 150}, To: board.Point{X: 500, Y: 200}, Label: "ritual"},
		{ConnectionID: 2, From: board.Point{X: 500, Y: 200}, To: board.Point{X: 400, Y: 600}},
	}, segments)

	// Segments follow the nodes.
	c := board.NewController(b)
	require.True(t, c.PointerDown(board.Point{X: 300, Y: 550}))
	c.PointerMove(board.Point{X: 0, Y: 0})
	segments = b.Segments()
	assert.Equal(t, board.Point{X: 100, Y: 50}, segments[1].To)

	require.True(t, c.RemoveNode(2))
	assert.Empty(t, b.Segments(), "connections to removed nodes are skipped")
	assert.Len(t, b.Connections, 3)
}

func TestController_AddAndConnect(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	c := board.NewController(b)

	n := c.AddNode(models.NodeInput{Type: models.NodeTypePerson, Title: "Jackson Elias", X: 40}, false)
	assert.Equal(t, int64(4), n.ID)
	assert.Equal(t, models.NodeSchemaBoard, n.Schema)
	assert.Equal(t, board.Point{X: board.DefaultX, Y: board.DefaultY}, board.Point{X: n.X, Y: n.Y})

	_, ok := c.CompleteConnect(1, "")
	assert.False(t, ok, "needs a selected node")

	require.True(t, c.BeginConnect(4))
	_, ok = c.CompleteConnect(4, "")
	assert.False(t, ok, "self-links are ignored")
	from, connecting := c.Connecting()
	assert.True(t, connecting)
	assert.Equal(t, int64(4), from)

	conn, ok := c.CompleteConnect(3, "signed the ledger")
	require.True(t, ok)
	assert.Equal(t, models.Connection{ID: 3, From: 4, To: 3, Label: "signed the ledger"}, conn)
	_, connecting = c.Connecting()
	assert.False(t, connecting)

	assert.False(t, c.BeginConnect(99))
	assert.False(t, c.RemoveNode(99))
}

func TestBoard_AddNodePositioned(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   board.Point
		want board.Point
	}{
		{name: "top-left corner is kept", in: board.Point{X: 0, Y: 0}, want: board.Point{X: 0, Y: 0}},
		{name: "inside canvas", in: board.Point{X: 40, Y: 60}, want: board.Point{X: 40, Y: 60}},
		{name: "far edges", in: board.Point{X: 5000, Y: 5000}, want: board.Point{X: 800, Y: 700}},
		{name: "negative", in: board.Point{X: -20, Y: 300}, want: board.Point{X: 0, Y: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := demoBoard().AddNode(models.NodeInput{Type: models.NodeTypeEvidence, Title: "Map", X: tt.in.X, Y: tt.in.Y},
				true)
			assert.Equal(t, tt.want, board.Point{X: n.X, Y: n.Y})
		})
	}
}

func TestNew_ClampsNodes(t *testing.T) {
	t.Parallel()
	b := board.New(models.Board{Nodes: []models.Node{
		{ID: 1, Title: "Far away", X: 5000, Y: 5000},
		{ID: 2, Title: "Above", X: 100, Y: -50},
		{ID: 3, Title: "Inside", X: 100, Y: 200},
	}}, 1200, 800)

	got := make([]board.Point, 0, len(b.Nodes))
	for _, n := range b.Nodes {
		got = append(got, board.Point{X: n.X, Y: n.Y})
	}
	assert.Equal(t, []board.Point{{X: 1000, Y: 700}, {X: 100, Y: 0}, {X: 100, Y: 200}}, got)
}

func TestBoard_Move(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	require.True(t, b.Move(3, board.Point{X: 950, Y: -10}))
	n, ok := b.Node(3)
	require.True(t, ok)
	assert.Equal(t, board.Point{X: 800, Y: 0}, board.Point{X: n.X, Y: n.Y})
	assert.False(t, b.Move(99, board.Point{}))
}
