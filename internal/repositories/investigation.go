package repositories

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/sqlite"
)

// ErrSelfConnection is returned when a connection would link a node to itself.
var ErrSelfConnection = errors.NewSentinel("connection endpoints must differ")

// InvestigationRepository stores the nodes and connections of the investigation board.
type InvestigationRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewInvestigationRepository(dbs *sqlite.Database, logger *slog.Logger) *InvestigationRepository {
	return &InvestigationRepository{
		dbs:    dbs,
		logger: logger.With("source", "InvestigationRepository"),
	}
}

type nodeRow struct {
	ID         int64   `db:"id"`
	Schema     string  `db:"schema"`
	Type       string  `db:"type"`
	Title      string  `db:"title"`
	Content    string  `db:"content"`
	Date       string  `db:"date"`
	Importance string  `db:"importance"`
	Status     string  `db:"status"`
	X          float64 `db:"x"`
	Y          float64 `db:"y"`
}

type nodeTagRow struct {
	NodeID   int64  `db:"node_id"`
	Position int    `db:"position"`
	Tag      string `db:"tag"`
}

// Board returns every node and connection ordered by id.
func (r *InvestigationRepository) Board(ctx context.Context) (*models.Board, error) {
	tx, err := r.dbs.ReadOnly.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	var (
		nodes       []nodeRow
		tags        []nodeTagRow
		connections []models.Connection
	)
	if err = tx.SelectContext(ctx, &nodes, `SELECT id, schema, type, title, content, date, importance, status, x, y
FROM board_nodes ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select nodes")
	}
	if err = tx.SelectContext(ctx, &tags,
		`SELECT node_id, position, tag FROM board_node_tags ORDER BY node_id, position`); err != nil {
		return nil, errors.Wrap(err, "select node tags")
	}
	if err = tx.SelectContext(ctx, &connections,
		`SELECT id, from_node, to_node, label FROM board_connections ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select connections")
	}

	board := models.Board{
		Nodes:       make([]models.Node, len(nodes)),
		Connections: orEmpty(connections),
	}
	byID := make(map[int64]*models.Node, len(nodes))
	for i, n := range nodes {
		board.Nodes[i] = models.Node{
			ID:         n.ID,
			Schema:     models.NodeSchema(n.Schema),
			Type:       models.NodeType(n.Type),
			Title:      n.Title,
			Content:    n.Content,
			Date:       n.Date,
			Importance: models.Importance(n.Importance),
			Status:     models.NodeStatus(n.Status),
			Tags:       []string{},
			X:          n.X,
			Y:          n.Y,
		}
		byID[n.ID] = &board.Nodes[i]
	}
	for _, t := range tags {
		if n, ok := byID[t.NodeID]; ok {
			n.Tags = append(n.Tags, t.Tag)
		}
	}
	return &board, nil
}

// CreateNode stores a new node. An empty schema defaults to models.NodeSchemaBoard.
func (r *InvestigationRepository) CreateNode(ctx context.Context, in models.NodeInput) (*models.Node, error) {
	if in.Schema == "" {
		in.Schema = models.NodeSchemaBoard
	}

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	res, err := tx.NamedExecContext(ctx, `INSERT INTO board_nodes
    (schema, type, title, content, date, importance, status, x, y)
VALUES (:schema, :type, :title, :content, :date, :importance, :status, :x, :y)`, nodeRow{
		Schema:     string(in.Schema),
		Type:       string(in.Type),
		Title:      in.Title,
		Content:    in.Content,
		Date:       in.Date,
		Importance: string(in.Importance),
		Status:     string(in.Status),
		X:          in.X,
		Y:          in.Y,
	})
	if err != nil {
		return nil, errors.Wrap(err, "insert node")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "last insert id")
	}
	if len(in.Tags) > 0 {
		tags := make([]nodeTagRow, len(in.Tags))
		for i, t := range in.Tags {
			tags[i] = nodeTagRow{NodeID: id, Position: i, Tag: t}
		}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO board_node_tags (node_id, position, tag)
VALUES (:node_id, :position, :tag)`, tags); err != nil {
			return nil, errors.Wrap(err, "insert node tags")
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	return &models.Node{
		ID:         id,
		Schema:     in.Schema,
		Type:       in.Type,
		Title:      in.Title,
		Content:    in.Content,
		Date:       in.Date,
		Importance: in.Importance,
		Status:     in.Status,
		Tags:       orEmpty(in.Tags),
		X:          in.X,
		Y:          in.Y,
	}, nil
}

// DeleteNode removes the node with id and every connection touching it.
func (r *InvestigationRepository) DeleteNode(ctx context.Context, id int64) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM board_nodes WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete node", slog.Int64("id", id))
	}
	return requireAffected(res, slog.Int64("node_id", id))
}

// CreateConnection links two existing nodes. It returns ErrNotFound when an endpoint is missing.
func (r *InvestigationRepository) CreateConnection(
	ctx context.Context,
	in models.ConnectionInput,
) (*models.Connection, error) {
	if in.From == in.To {
		return nil, errors.Wrap(ErrSelfConnection, "create connection", slog.Int64("node_id", in.From))
	}

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	for _, endpoint := range []int64{in.From, in.To} {
		if err = requireNode(ctx, tx, endpoint); err != nil {
			return nil, err
		}
	}
	c := models.Connection{From: in.From, To: in.To, Label: in.Label}
	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO board_connections (from_node, to_node, label) VALUES (:from_node, :to_node, :label)`, c)
	if err != nil {
		return nil, errors.Wrap(err, "insert connection")
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return nil, errors.Wrap(err, "last insert id")
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return &c, nil
}

// DeleteConnection removes the connection with id.
func (r *InvestigationRepository) DeleteConnection(ctx context.Context, id int64) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM board_connections WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete connection", slog.Int64("id", id))
	}
	return requireAffected(res, slog.Int64("connection_id", id))
}

func requireNode(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM board_nodes WHERE id = ?)`, id); err != nil {
		return errors.Wrap(err, "check node", slog.Int64("node_id", id))
	}
	if !exists {
		return errors.Wrap(ErrNotFound, "connection endpoint", slog.Int64("node_id", id))
	}
	return nil
}
