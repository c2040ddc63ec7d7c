package repositories_test

import (
	"context"
	"testing"

	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewCalendarRepository(dbs, logger)

	created, err := repo.Create(ctx, models.CalendarEventInput{
		Title: "Session 14: Cairo",
		Date:  "2024-04-06",
		Time:  "7:00 PM EST",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeOther, created.Type)

	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{name: "open range", want: []string{
			"Next Session: The Haunting", "Character Creation Workshop", "Session 14: Cairo",
		}},
		{name: "march only", from: "2024-03-01", to: "2024-03-31", want: []string{
			"Next Session: The Haunting", "Character Creation Workshop",
		}},
		{name: "inclusive bounds", from: "2024-03-30", to: "2024-04-06", want: []string{
			"Character Creation Workshop", "Session 14: Cairo",
		}},
		{name: "empty", from: "2025-01-01", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.List(ctx, tt.from, tt.to)
			require.NoError(t, err)
			got := make([]string, len(events))
			for i, e := range events {
				got[i] = e.Title
			}
			assert.Equal(t, tt.want, got)
		})
	}

	updated, err := repo.Update(ctx, created.ID, models.CalendarEventInput{
		Title: "Session 14: Cairo", Date: "2024-04-13", Type: models.EventTypeSession,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-13", updated.Date)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeSession, got.Type)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.Update(ctx, created.ID, models.CalendarEventInput{Title: "x", Date: "2024-04-13"})
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
