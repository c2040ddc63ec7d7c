package board

import "github.com/myrjola/masks/internal/models"

// State is the drag state of a Controller.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Controller turns pointer events into node moves on a Board.
//
// Idle goes to Dragging on a pointer-down over a node. Pointer moves while Dragging reposition the node.
// Pointer-up or leaving the canvas goes back to Idle. Node positions are never written back to storage.
type Controller struct {
	board   *Board
	state   State
	dragged int64
	offset  Point

	connecting  bool
	connectFrom int64
}

func NewController(b *Board) *Controller {
	return &Controller{board: b}
}

func (c *Controller) Board() *Board {
	return c.board
}

func (c *Controller) State() State {
	return c.state
}

// Dragged returns the id of the node being dragged.
func (c *Controller) Dragged() (int64, bool) {
	return c.dragged, c.state == Dragging
}

// PointerDown starts dragging the top-most node under p. It reports whether a node was hit.
//
// The hit node moves to the end of the paint order.
func (c *Controller) PointerDown(p Point) bool {
	nodes := c.board.Nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !Contains(n, p) {
			continue
		}
		c.offset = Point{X: p.X - n.X, Y: p.Y - n.Y}
		c.dragged = n.ID
		c.state = Dragging
		copy(nodes[i:], nodes[i+1:])
		nodes[len(nodes)-1] = n
		return true
	}
	return false
}

// PointerMove repositions the dragged node to p minus the grab offset, clamped to the canvas.
// It is ignored while Idle.
func (c *Controller) PointerMove(p Point) {
	if c.state != Dragging {
		return
	}
	i := c.board.index(c.dragged)
	if i < 0 {
		// The node was removed mid-drag.
		c.reset()
		return
	}
	pos := c.board.Clamp(Point{X: p.X - c.offset.X, Y: p.Y - c.offset.Y})
	c.board.Nodes[i].X = pos.X
	c.board.Nodes[i].Y = pos.Y
}

func (c *Controller) PointerUp() {
	c.reset()
}

func (c *Controller) PointerLeave() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.dragged = 0
	c.offset = Point{}
}

// AddNode adds a node to the board. See Board.AddNode.
func (c *Controller) AddNode(in models.NodeInput, positioned bool) models.Node {
	return c.board.AddNode(in, positioned)
}

// RemoveNode removes a node and cancels any drag or pending link that involves it.
func (c *Controller) RemoveNode(id int64) bool {
	if !c.board.RemoveNode(id) {
		return false
	}
	if c.state == Dragging && c.dragged == id {
		c.reset()
	}
	if c.connecting && c.connectFrom == id {
		c.CancelConnect()
	}
	return true
}

// BeginConnect selects the first node of a two-click link.
func (c *Controller) BeginConnect(id int64) bool {
	if _, ok := c.board.Node(id); !ok {
		return false
	}
	c.connecting = true
	c.connectFrom = id
	return true
}

// Connecting returns the node selected with BeginConnect.
func (c *Controller) Connecting() (int64, bool) {
	return c.connectFrom, c.connecting
}

// CompleteConnect links the selected node to id. Clicking the selected node again keeps the selection.
func (c *Controller) CompleteConnect(id int64, label string) (models.Connection, bool) {
	if !c.connecting || id == c.connectFrom {
		return models.Connection{}, false
	}
	conn, ok := c.board.Connect(c.connectFrom, id, label)
	if ok {
		c.CancelConnect()
	}
	return conn, ok
}

func (c *Controller) CancelConnect() {
	c.connecting = false
	c.connectFrom = 0
}
