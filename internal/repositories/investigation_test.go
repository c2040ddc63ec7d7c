package repositories_test

import (
	"context"
	"testing"

	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestigationRepository_Board(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewInvestigationRepository(dbs, logger)

	board, err := repo.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Nodes, 3)
	assert.Equal(t, models.Node{
		ID:         1,
		Schema:     models.NodeSchemaBoard,
		Type:       models.NodeTypeEvidence,
		Title:      "Torn Letter",
		Content:    `A hastily written note mentioning "the blood moon" and the Gates of Blackwater`,
		Date:       "January 15th, 1925",
		Importance: models.ImportanceHigh,
		Status:     models.NodeStatusVerified,
		Tags:       []string{},
		X:          200,
		Y:          100,
	}, board.Nodes[0])
	assert.Equal(t, []models.Connection{
		{ID: 1, From: 1, To: 2, Label: "Both mention the ritual"},
		{ID: 2, From: 2, To: 3},
	}, board.Connections)
}

func TestInvestigationRepository_CreateNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewInvestigationRepository(dbs, logger)

	node, err := repo.CreateNode(ctx, models.NodeInput{
		Schema: models.NodeSchemaCasefile,
		Type:   models.NodeTypeSuspect,
		Title:  "Roger Carlyle",
		Tags:   []string{"New York", "expedition"},
		X:      300,
		Y:      200,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), node.ID)

	plain, err := repo.CreateNode(ctx, models.NodeInput{Type: models.NodeTypePerson, Title: "Jackson Elias"})
	require.NoError(t, err)
	assert.Equal(t, models.NodeSchemaBoard, plain.Schema)

	board, err := repo.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Nodes, 5)
	assert.Equal(t, *node, board.Nodes[3])
	assert.Equal(t, []string{}, board.Nodes[4].Tags)
}

func TestInvestigationRepository_Connections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewInvestigationRepository(dbs, logger)

	tests := []struct {
		name    string
		input   models.ConnectionInput
		wantErr error
	}{
		{name: "links existing nodes", input: models.ConnectionInput{From: 3, To: 1, Label: "same handwriting"}},
		{name: "missing endpoint", input: models.ConnectionInput{From: 1, To: 99}, wantErr: repositories.ErrNotFound},
		{name: "self link", input: models.ConnectionInput{From: 2, To: 2}, wantErr: repositories.ErrSelfConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := repo.CreateConnection(ctx, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Label, c.Label)
			assert.Positive(t, c.ID)
		})
	}

	board, err := repo.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Connections, 3)

	require.NoError(t, repo.DeleteConnection(ctx, 1))
	require.ErrorIs(t, repo.DeleteConnection(ctx, 1), repositories.ErrNotFound)

	require.NoError(t, repo.DeleteNode(ctx, 2))
	require.ErrorIs(t, repo.DeleteNode(ctx, 2), repositories.ErrNotFound)

	board, err = repo.Board(ctx)
	require.NoError(t, err)
	assert.Len(t, board.Nodes, 2)
	require.Len(t, board.Connections, 1, "connections of deleted node cascade")
	assert.Equal(t, "same handwriting", board.Connections[0].Label)
}
