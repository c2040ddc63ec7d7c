// Package board models the investigation board canvas: positioned nodes, the connections between them and the
// pointer gestures that move nodes around.
package board

import (
	"math"

	"github.com/myrjola/masks/internal/models"
)

const (
	// NodeWidth and NodeHeight are the size of the box drawn for every node.
	NodeWidth  = 200
	NodeHeight = 100

	// DefaultX and DefaultY place nodes added without a position.
	DefaultX = 300
	DefaultY = 200

	// DefaultWidth and DefaultHeight are the canvas size used when no other is configured.
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Point is a position in canvas pixel space with the origin at the top-left corner.
type Point struct {
	X float64
	Y float64
}

// Segment is the line drawn for a connection between the centres of its endpoints.
type Segment struct {
	ConnectionID int64
	From         Point
	To           Point
	Label        string
}

// Board holds the nodes and connections shown on a canvas of Width × Height pixels.
//
// Nodes are kept in paint order. The last node is drawn on top.
type Board struct {
	Nodes       []models.Node
	Connections []models.Connection
	Width       float64
	Height      float64
}

// New copies the nodes and connections of b onto a canvas of the given size. Nodes outside the canvas are clamped
// onto it.
func New(b models.Board, width, height float64) *Board {
	board := &Board{
		Nodes:       append([]models.Node(nil), b.Nodes...),
		Connections: append([]models.Connection(nil), b.Connections...),
		Width:       width,
		Height:      height,
	}
	for i, n := range board.Nodes {
		p := board.Clamp(Point{X: n.X, Y: n.Y})
		board.Nodes[i].X, board.Nodes[i].Y = p.X, p.Y
	}
	return board
}

// Move places the node with id at the top-left corner p, clamped to the canvas.
func (b *Board) Move(id int64, p Point) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	p = b.Clamp(p)
	b.Nodes[i].X, b.Nodes[i].Y = p.X, p.Y
	return true
}

// Node returns the node with id.
func (b *Board) Node(id int64) (models.Node, bool) {
	if i := b.index(id); i >= 0 {
		return b.Nodes[i], true
	}
	return models.Node{}, false
}

func (b *Board) index(id int64) int {
	for i := range b.Nodes {
		if b.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Centre returns the centre of the box of n.
func Centre(n models.Node) Point {
	return Point{X: n.X + NodeWidth/2, Y: n.Y + NodeHeight/2}
}

// Contains reports whether p lies within the box of n.
func Contains(n models.Node, p Point) bool {
	return p.X >= n.X && p.X <= n.X+NodeWidth && p.Y >= n.Y && p.Y <= n.Y+NodeHeight
}

// Clamp moves the top-left corner p so that a node box placed there stays on the canvas.
func (b *Board) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, 0, b.Width-NodeWidth),
		Y: clamp(p.Y, 0, b.Height-NodeHeight),
	}
}

func clamp(v, lo, hi float64) float64 {
	// A canvas smaller than the node box pins the node to the origin.
	hi = math.Max(hi, lo)
	return math.Min(math.Max(v, lo), hi)
}

// Segments derives the lines to draw from the current node positions.
// Connections with an endpoint that is not on the board are skipped.
func (b *Board) Segments() []Segment {
	segments := make([]Segment, 0, len(b.Connections))
	for _, c := range b.Connections {
		from, okFrom := b.Node(c.From)
		to, okTo := b.Node(c.To)
		if !okFrom || !okTo {
			continue
		}
		segments = append(segments, Segment{
			ConnectionID: c.ID,
			From:         Centre(from),
			To:           Centre(to),
			Label:        c.Label,
		})
	}
	return segments
}

// AddNode appends a node built from in with the next free id. Unless positioned is set, the position of in is
// ignored and the node is placed at DefaultX, DefaultY. Either way it ends up on the canvas.
func (b *Board) AddNode(in models.NodeInput, positioned bool) models.Node {
	var next int64 = 1
	for _, n := range b.Nodes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	schema := in.Schema
	if schema == "" {
		schema = models.NodeSchemaBoard
	}
	pos := Point{X: DefaultX, Y: DefaultY}
	if positioned {
		pos = Point{X: in.X, Y: in.Y}
	}
	pos = b.Clamp(pos)
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	n := models.Node{
		ID:         next,
		Schema:     schema,
		Type:       in.Type,
		Title:      in.Title,
		Content:    in.Content,
		Date:       in.Date,
		Importance: in.Importance,
		Status:     in.Status,
		Tags:       tags,
		X:          pos.X,
		Y:          pos.Y,
	}
	b.Nodes = append(b.Nodes, n)
	return n
}

// RemoveNode takes the node with id off the board. Its connections stay and are skipped when drawing.
func (b *Board) RemoveNode(id int64) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.Nodes = append(b.Nodes[:i], b.Nodes[i+1:]...)
	return true
}

// Connect links two nodes on the board. Self-links and links to unknown nodes are refused.
func (b *Board) Connect(from, to int64, label string) (models.Connection, bool) {
	if from == to || b.index(from) < 0 || b.index(to) < 0 {
		return models.Connection{}, false
	}
	var next int64 = 1
	for _, c := range b.Connections {
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	c := models.Connection{ID: next, From: from, To: to, Label: label}
	b.Connections = append(b.Connections, c)
	return c, true
}
