package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func janeDoe() models.CharacterInput {
	return models.CharacterInput{
		Name:       "Jane Doe",
		Occupation: "Librarian",
		Background: "Miskatonic University archivist.",
		Stats:      models.Stats{For: 40, Con: 50, Tam: 55, Des: 60, Apa: 45, Edu: 80, Int: 75, Pod: 65},
		MentalHealth: models.MentalHealth{
			Sanity:    65,
			MaxSanity: 99,
			Phobias:   []string{"Claustrophobia"},
		},
		Skills: []models.Skill{
			{Name: "Library Use", Value: 70, Category: models.SkillCategoryAcademic},
			{Name: "Spot Hidden", Value: 45, Category: models.SkillCategoryPractical},
		},
		Equipment: []models.Equipment{
			{Name: "Reading Lamp", Description: "Brass, dented", Type: models.EquipmentTypeTool},
		},
		PulpTalents: []string{"Lore", "Photographic Memory"},
		Wounds:      0,
		MaxHealth:   10,
	}
}

func TestCharacterRepository_CreateAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewCharacterRepository(dbs, logger)

	created, err := repo.Create(ctx, janeDoe())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	characters, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, characters, 1)
	got := characters[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 0, got.Wounds)
	assert.Equal(t, 10, got.MaxHealth)
	assert.Equal(t, janeDoe().Stats, got.Stats)
	assert.Equal(t, janeDoe().Skills, got.Skills)
	assert.Equal(t, janeDoe().Equipment, got.Equipment)
	assert.Equal(t, []string{"Lore", "Photographic Memory"}, got.PulpTalents)
	assert.Equal(t, []string{"Claustrophobia"}, got.MentalHealth.Phobias)
	assert.Empty(t, got.MentalHealth.Manias)
	assert.NotNil(t, got.MentalHealth.Manias)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)
}

func TestCharacterRepository_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewCharacterRepository(dbs, logger)

	created, err := repo.Create(ctx, janeDoe())
	require.NoError(t, err)

	in := janeDoe()
	in.Wounds = 4
	in.Skills = []models.Skill{{Name: "Firearms (Handgun)", Value: 30, Category: models.SkillCategoryCombat}}
	in.Equipment = nil
	in.MentalHealth.Manias = []string{"Bibliomania"}
	updated, err := repo.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Wounds)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Second)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Wounds)
	assert.Equal(t, in.Skills, got.Skills)
	assert.Empty(t, got.Equipment)
	assert.Equal(t, []string{"Bibliomania"}, got.MentalHealth.Manias)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	_, err = repo.Update(ctx, "missing", in)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCharacterRepository_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs, logger := newTestDB(t)
	repo := repositories.NewCharacterRepository(dbs, logger)

	kept, err := repo.Create(ctx, janeDoe())
	require.NoError(t, err)
	deleted, err := repo.Create(ctx, janeDoe())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, deleted.ID))
	_, err = repo.Get(ctx, deleted.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Delete(ctx, deleted.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound, "second delete reports not found")

	var orphans int
	require.NoError(t, dbs.ReadOnly.GetContext(ctx, &orphans,
		`SELECT COUNT(*) FROM character_skills WHERE character_id = ?`, deleted.ID))
	assert.Zero(t, orphans)

	got, err := repo.Get(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, got.Skills, 2, "other characters are untouched")
}
