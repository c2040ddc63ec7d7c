package screens

import (
	"strings"

	"github.com/myrjola/masks/internal/models"
)

type CharacterScreen = ListScreen[models.Character]

// NewCharacterScreen filters characters by name and occupation.
func NewCharacterScreen() *CharacterScreen {
	return newListScreen(
		func(c models.Character) string { return c.ID },
		func(c models.Character) []string { return []string{c.Name, c.Occupation} },
	)
}

type SessionScreen = ListScreen[models.Session]

// NewSessionScreen filters sessions by title, location and summary.
func NewSessionScreen() *SessionScreen {
	return newListScreen(
		func(s models.Session) string { return s.ID },
		func(s models.Session) []string { return []string{s.Title, s.Location, s.Summary} },
	)
}

// ParseList splits a comma separated form field, dropping blank entries.
func ParseList(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FormatList is the inverse of ParseList.
func FormatList(items []string) string {
	return strings.Join(items, ", ")
}

func removeAt[T any](rows []T, i int) []T {
	if i < 0 || i >= len(rows) {
		return rows
	}
	return append(rows[:i], rows[i+1:]...)
}

// CharacterForm is the create and edit form of a character. ID is empty when creating.
type CharacterForm struct {
	ID    string
	Input models.CharacterInput
}

// NewCharacterForm returns a blank form with the defaults of a fresh investigator sheet.
func NewCharacterForm() *CharacterForm {
	return &CharacterForm{Input: models.CharacterInput{
		Stats: models.Stats{For: 50, Con: 50, Tam: 50, Des: 50, Apa: 50, Edu: 50, Int: 50, Pod: 50},
		MentalHealth: models.MentalHealth{
			Sanity:    50,
			MaxSanity: 99,
			Phobias:   []string{},
			Manias:    []string{},
		},
		Skills:      []models.Skill{},
		Equipment:   []models.Equipment{},
		PulpTalents: []string{},
		MaxHealth:   10,
	}}
}

func EditCharacterForm(c models.Character) *CharacterForm {
	return &CharacterForm{ID: c.ID, Input: c.Input()}
}

func (f *CharacterForm) AddSkill() {
	f.Input.Skills = append(f.Input.Skills, models.Skill{Category: models.SkillCategoryAcademic})
}

func (f *CharacterForm) RemoveSkill(i int) {
	f.Input.Skills = removeAt(f.Input.Skills, i)
}

func (f *CharacterForm) AddEquipment() {
	f.Input.Equipment = append(f.Input.Equipment, models.Equipment{Type: models.EquipmentTypeTool})
}

func (f *CharacterForm) RemoveEquipment(i int) {
	f.Input.Equipment = removeAt(f.Input.Equipment, i)
}

func (f *CharacterForm) SetTalents(text string) {
	f.Input.PulpTalents = ParseList(text)
}

func (f *CharacterForm) SetPhobias(text string) {
	f.Input.MentalHealth.Phobias = ParseList(text)
}

func (f *CharacterForm) SetManias(text string) {
	f.Input.MentalHealth.Manias = ParseList(text)
}

// SessionForm is the create and edit form of a session note. ID is empty when creating.
type SessionForm struct {
	ID    string
	Input models.SessionInput
}

func NewSessionForm() *SessionForm {
	return &SessionForm{Input: models.SessionInput{
		Tags:   []string{},
		Images: []string{},
		Clues:  []models.Clue{},
		Items:  []models.Item{},
	}}
}

func EditSessionForm(s models.Session) *SessionForm {
	return &SessionForm{ID: s.ID, Input: s.Input()}
}

func (f *SessionForm) AddClue() {
	f.Input.Clues = append(f.Input.Clues, models.Clue{Type: models.ClueTypeDocument})
}

func (f *SessionForm) RemoveClue(i int) {
	f.Input.Clues = removeAt(f.Input.Clues, i)
}

func (f *SessionForm) AddItem() {
	f.Input.Items = append(f.Input.Items, models.Item{Type: models.ItemTypeMisc})
}

func (f *SessionForm) RemoveItem(i int) {
	f.Input.Items = removeAt(f.Input.Items, i)
}

func (f *SessionForm) SetTags(text string) {
	f.Input.Tags = ParseList(text)
}

func (f *SessionForm) SetImages(text string) {
	f.Input.Images = ParseList(text)
}
