package screens_test

import (
	"context"
	"testing"
	"time"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/screens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func investigators() []models.Character {
	return []models.Character{
		{ID: "a", Name: "Jane Doe", Occupation: "Librarian"},
		{ID: "b", Name: "Harvey Walters", Occupation: "Journalist"},
		{ID: "c", Name: "Jackson Elias", Occupation: "Author"},
	}
}

func names(cs []models.Character) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestCharacterScreen_Filter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filter string
		want   []string
	}{
		{filter: "", want: []string{"Jane Doe", "Harvey Walters", "Jackson Elias"}},
		{filter: "  ja ", want: []string{"Jane Doe", "Jackson Elias"}},
		{filter: "JOURNAL", want: []string{"Harvey Walters"}},
		{filter: "keeper", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			t.Parallel()
			s := screens.NewCharacterScreen()
			s.Load(investigators())
			s.SetFilter(tt.filter)
			assert.Equal(t, tt.want, names(s.Visible()))
		})
	}
}

func TestSessionScreen_Filter(t *testing.T) {
	t.Parallel()
	s := screens.NewSessionScreen()
	s.Load([]models.Session{
		{ID: "1", Title: "The Haunting Begins", Location: "Arkham"},
		{ID: "2", Title: "Voyage", Summary: "Crossing to LONDON"},
	})
	s.SetFilter("london")
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "2", s.Visible()[0].ID)
}

func TestListScreen_Toggle(t *testing.T) {
	t.Parallel()
	s := screens.NewCharacterScreen()
	s.Load(investigators())

	assert.True(t, s.Toggle("a"))
	assert.True(t, s.Expanded("a"))
	assert.False(t, s.Toggle("a"))
	assert.False(t, s.Expanded("a"))
	assert.False(t, s.Toggle("missing"))

	s.Toggle("b")
	s.Load(investigators()[:1])
	assert.False(t, s.Expanded("b"), "reloading forgets records that are gone")
}

func TestListScreen_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := screens.NewCharacterScreen()
	s.Load(investigators())

	require.Error(t, s.ConfirmDelete(ctx, func(context.Context, string) error { return nil }), "nothing pending")
	assert.False(t, s.RequestDelete("missing"))

	require.True(t, s.RequestDelete("b"))
	pending, ok := s.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "Harvey Walters", pending.Name)
	s.CancelDelete()
	_, ok = s.PendingDelete()
	assert.False(t, ok)
	assert.Len(t, s.Items(), 3)

	require.True(t, s.RequestDelete("b"))
	err := s.ConfirmDelete(ctx, func(context.Context, string) error { return errors.New("Character not found") })
	require.Error(t, err)
	assert.Equal(t, "Character not found", s.Error())
	assert.Len(t, s.Items(), 3, "failed delete keeps the record")
	s.DismissError()
	assert.Empty(t, s.Error())

	var deleted string
	require.True(t, s.RequestDelete("b"))
	require.NoError(t, s.ConfirmDelete(ctx, func(_ context.Context, id string) error {
		deleted = id
		return nil
	}))
	assert.Equal(t, "b", deleted)
	assert.Equal(t, []string{"Jane Doe", "Jackson Elias"}, names(s.Items()))
}

func TestListScreen_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := screens.NewCharacterScreen()

	require.NoError(t, s.Refresh(ctx, func(context.Context) ([]models.Character, error) {
		return investigators(), nil
	}))
	require.Error(t, s.Refresh(ctx, func(context.Context) ([]models.Character, error) {
		return nil, errors.New("Failed to fetch characters")
	}))
	assert.Equal(t, "Failed to fetch characters", s.Error())
	assert.Len(t, s.Items(), 3, "failed refresh keeps the previous list")

	s.Put(models.Character{ID: "b", Name: "Harvey"})
	s.Put(models.Character{ID: "d", Name: "Miles Shipley"})
	assert.Equal(t, []string{"Jane Doe", "Harvey", "Jackson Elias", "Miles Shipley"}, names(s.Items()))
}

func TestParseList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"Arachnophobia", "Claustrophobia"}, screens.ParseList(" Arachnophobia, ,Claustrophobia,"))
	assert.Equal(t, []string{}, screens.ParseList(""))
	assert.Equal(t, "a, b", screens.FormatList([]string{"a", "b"}))
}

func TestCharacterForm_Rows(t *testing.T) {
	t.Parallel()
	f := screens.NewCharacterForm()
	f.AddSkill()
	f.AddSkill()
	f.Input.Skills[0].Name = "Library Use"
	f.Input.Skills[1].Name = "Spot Hidden"
	f.RemoveSkill(0)
	f.RemoveSkill(7)
	require.Len(t, f.Input.Skills, 1)
	assert.Equal(t, "Spot Hidden", f.Input.Skills[0].Name)

	f.AddEquipment()
	f.RemoveEquipment(0)
	assert.Empty(t, f.Input.Equipment)

	f.SetTalents("Lucky, Resilient")
	f.SetPhobias("Darkness")
	f.SetManias("")
	assert.Equal(t, []string{"Lucky", "Resilient"}, f.Input.PulpTalents)
	assert.Equal(t, []string{"Darkness"}, f.Input.MentalHealth.Phobias)
	assert.Equal(t, []string{}, f.Input.MentalHealth.Manias)
}

func TestSessionForm_Rows(t *testing.T) {
	t.Parallel()
	f := screens.EditSessionForm(models.Session{ID: "s1", Title: "The Haunting Begins", Tags: []string{"horror"}})
	assert.Equal(t, "s1", f.ID)
	f.AddClue()
	f.AddItem()
	assert.Equal(t, models.ClueTypeDocument, f.Input.Clues[0].Type)
	assert.Equal(t, models.ItemTypeMisc, f.Input.Items[0].Type)
	f.RemoveClue(0)
	f.RemoveItem(0)
	assert.Empty(t, f.Input.Clues)
	assert.Empty(t, f.Input.Items)
	f.SetTags("ritual, Combat")
	assert.Equal(t, []string{"ritual", "Combat"}, f.Input.Tags)
}

func TestCalendarScreen_Weeks(t *testing.T) {
	t.Parallel()
	s := screens.NewCalendarScreen(time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC))
	s.Load([]models.CalendarEvent{
		{ID: "1", Title: "Next Session: The Haunting", Date: "2024-03-23"},
		{ID: "2", Title: "Character Creation Workshop", Date: "2024-03-30"},
		{ID: "3", Title: "Last month", Date: "2024-02-10"},
	})

	weeks := s.Weeks()
	// March 2024 starts on a Friday and spans six rows.
	require.Len(t, weeks, 6)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
	for i := range 5 {
		assert.True(t, weeks[0][i].Blank)
	}
	assert.Equal(t, 1, weeks[0][5].Date.Day())
	assert.Equal(t, time.Friday, weeks[0][5].Date.Weekday())

	saturday := weeks[3][6]
	assert.Equal(t, 23, saturday.Date.Day())
	require.Len(t, saturday.Events, 1)
	assert.Equal(t, "1", saturday.Events[0].ID)
	assert.True(t, weeks[3][3].Today)

	from, to := s.Range()
	assert.Equal(t, "2024-03-01", from)
	assert.Equal(t, "2024-03-31", to)

	upcoming := s.Upcoming()
	require.Len(t, upcoming, 2)
	assert.Equal(t, "1", upcoming[0].ID)

	s.Select(time.Date(2024, time.March, 30, 9, 0, 0, 0, time.UTC))
	day, ok := s.Selected()
	require.True(t, ok)
	require.Len(t, day.Events, 1)
	assert.Equal(t, "2", day.Events[0].ID)

	s.Prev()
	assert.Equal(t, time.February, s.Month().Month())
	s.Next()
	s.Next()
	assert.Equal(t, time.April, s.Month().Month())
}
