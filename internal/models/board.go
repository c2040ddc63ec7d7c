package models

import "slices"

// NodeSchema tells which taxonomy a board node follows. Both taxonomies exist in the group's data and
// are kept apart rather than merged.
type NodeSchema string

const (
	// NodeSchemaBoard nodes are evidence, persons or locations with importance and status.
	NodeSchemaBoard NodeSchema = "board"
	// NodeSchemaCasefile nodes are case file clues with free-form tags.
	NodeSchemaCasefile NodeSchema = "casefile"
)

type NodeType string

const (
	NodeTypeEvidence  NodeType = "evidence"
	NodeTypePerson    NodeType = "person"
	NodeTypeLocation  NodeType = "location"
	NodeTypeTestimony NodeType = "testimony"
	NodeTypeSuspect   NodeType = "suspect"
)

// Types returns the node types allowed in the schema.
func (s NodeSchema) Types() []NodeType {
	switch s {
	case NodeSchemaBoard:
		return []NodeType{NodeTypeEvidence, NodeTypePerson, NodeTypeLocation}
	case NodeSchemaCasefile:
		return []NodeType{NodeTypeLocation, NodeTypeEvidence, NodeTypeTestimony, NodeTypeSuspect}
	default:
		return nil
	}
}

// Allows reports whether t belongs to the schema.
func (s NodeSchema) Allows(t NodeType) bool {
	return slices.Contains(s.Types(), t)
}

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

type NodeStatus string

const (
	NodeStatusVerified   NodeStatus = "verified"
	NodeStatusUnverified NodeStatus = "unverified"
)

// NodeInput is the payload accepted when creating a board node. An empty schema means NodeSchemaBoard.
type NodeInput struct {
	Schema     NodeSchema `json:"schema" validate:"omitempty,oneof=board casefile"`
	Type       NodeType   `json:"type" validate:"required"`
	Title      string     `json:"title" validate:"required,max=200"`
	Content    string     `json:"content"`
	Date       string     `json:"date" validate:"max=100"`
	Importance Importance `json:"importance" validate:"omitempty,oneof=low medium high"`
	Status     NodeStatus `json:"status" validate:"omitempty,oneof=verified unverified"`
	Tags       []string   `json:"tags" validate:"dive,required"`
	X          float64    `json:"x" validate:"min=0"`
	Y          float64    `json:"y" validate:"min=0"`
}

// Node is a positioned card on the investigation board.
type Node struct {
	ID         int64      `json:"id"`
	Schema     NodeSchema `json:"schema"`
	Type       NodeType   `json:"type"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Date       string     `json:"date,omitempty"`
	Importance Importance `json:"importance,omitempty"`
	Status     NodeStatus `json:"status,omitempty"`
	Tags       []string   `json:"tags"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
}

// ConnectionInput is the payload accepted when linking two nodes.
type ConnectionInput struct {
	From  int64  `json:"from" validate:"required"`
	To    int64  `json:"to" validate:"required,nefield=From"`
	Label string `json:"label" validate:"max=200"`
}

// Connection is a directed, optionally labelled link between two nodes.
type Connection struct {
	ID    int64  `json:"id" db:"id"`
	From  int64  `json:"from" db:"from_node"`
	To    int64  `json:"to" db:"to_node"`
	Label string `json:"label" db:"label"`
}

// Board is every node and connection on the investigation board.
type Board struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}
