package main

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/screens"
	"github.com/myrjola/masks/internal/validation"
)

type bannerData struct {
	Error   string
	Retry   string
	Dismiss string
}

type charactersTemplateData struct {
	BaseTemplateData
	Banner     bannerData
	Screen     *screens.CharacterScreen
	Characters []models.Character
}

// characterScreen loads the characters and applies the filter and expanded details of the query string.
// A failed load is shown in the banner of the screen.
func (app *application) characterScreen(r *http.Request) *screens.CharacterScreen {
	s := screens.NewCharacterScreen()
	if err := s.Refresh(r.Context(), app.characters.List); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "load characters", errors.SlogError(err))
	}
	query := r.URL.Query()
	s.SetFilter(query.Get("q"))
	for _, id := range query["expand"] {
		s.Toggle(id)
	}
	return s
}

func (app *application) charactersPage(w http.ResponseWriter, r *http.Request) {
	s := app.characterScreen(r)
	if s.Error() != "" {
		// The raw database error is not for the player's eyes.
		s.SetError(errors.New("Failed to fetch characters"))
	}
	app.render(w, r, http.StatusOK, "characters", charactersTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Banner:           bannerData{Error: s.Error(), Retry: r.URL.RequestURI(), Dismiss: "/characters"},
		Screen:           s,
		Characters:       s.Visible(),
	})
}

// characterDetail serves the expanded detail of a character as an htmx fragment. Plain requests are redirected to
// the list with the detail expanded.
func (app *application) characterDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !app.isHxRequest(w, r) {
		http.Redirect(w, r, "/characters?"+url.Values{"expand": {id}}.Encode(), http.StatusSeeOther)
		return
	}
	c, err := app.characters.Get(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.renderFragment(w, r, http.StatusOK, "characters", "character-detail", c)
}

type statField struct {
	Key   string
	Value int
}

type characterFormTemplateData struct {
	BaseTemplateData
	Form            *screens.CharacterForm
	Stats           []statField
	Errors          map[string]string
	SkillCategories []models.SkillCategory
	EquipmentTypes  []models.EquipmentType
}

func (app *application) renderCharacterForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form *screens.CharacterForm,
	fieldErrors map[string]string,
) {
	st := form.Input.Stats
	app.render(w, r, status, "character-form", characterFormTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Form:             form,
		Stats: []statField{
			{Key: "For", Value: st.For}, {Key: "Con", Value: st.Con},
			{Key: "Tam", Value: st.Tam}, {Key: "Des", Value: st.Des},
			{Key: "Apa", Value: st.Apa}, {Key: "Edu", Value: st.Edu},
			{Key: "Int", Value: st.Int}, {Key: "Pod", Value: st.Pod},
		},
		Errors: fieldErrors,
		SkillCategories: []models.SkillCategory{
			models.SkillCategoryCombat, models.SkillCategoryAcademic,
			models.SkillCategoryPractical, models.SkillCategorySocial,
		},
		EquipmentTypes: []models.EquipmentType{
			models.EquipmentTypeWeapon, models.EquipmentTypeTool,
			models.EquipmentTypeBook, models.EquipmentTypeArtifact,
		},
	})
}

func (app *application) newCharacterPage(w http.ResponseWriter, r *http.Request) {
	app.renderCharacterForm(w, r, http.StatusOK, screens.NewCharacterForm(), nil)
}

func (app *application) editCharacterPage(w http.ResponseWriter, r *http.Request) {
	c, err := app.characters.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.renderCharacterForm(w, r, http.StatusOK, screens.EditCharacterForm(*c), nil)
}

// submitCharacterForm either edits the rows of the form and renders it again or saves the character.
func (app *application) submitCharacterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	form, fieldErrors := parseCharacterForm(r.PostForm)

	op, index := parseOp(r.PostForm.Get("op"))
	switch op {
	case "add-skill":
		form.AddSkill()
	case "remove-skill":
		form.RemoveSkill(index)
	case "add-equipment":
		form.AddEquipment()
	case "remove-equipment":
		form.RemoveEquipment(index)
	case "save":
		app.saveCharacter(w, r, form, fieldErrors)
		return
	default:
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	app.renderCharacterForm(w, r, http.StatusOK, form, nil)
}

func (app *application) saveCharacter(
	w http.ResponseWriter,
	r *http.Request,
	form *screens.CharacterForm,
	fieldErrors map[string]string,
) {
	var invalid *validation.Error
	if err := app.validate.Struct(form.Input); err != nil {
		if !errors.As(err, &invalid) {
			app.serverError(w, r, err)
			return
		}
		mergeFieldErrors(fieldErrors, invalid.Fields)
	}
	if len(fieldErrors) > 0 {
		app.renderCharacterForm(w, r, http.StatusUnprocessableEntity, form, fieldErrors)
		return
	}

	var (
		c   *models.Character
		err error
		op  = "create"
	)
	if form.ID == "" {
		c, err = app.characters.Create(r.Context(), form.Input)
	} else {
		op = "update"
		c, err = app.characters.Update(r.Context(), form.ID, form.Input)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.metrics.Write("character", op)
	app.flash(r, c.Name+" saved.")
	http.Redirect(w, r, "/characters?"+url.Values{"expand": {c.ID}}.Encode(), http.StatusSeeOther)
}

type deleteTemplateData struct {
	BaseTemplateData
	Name   string
	Action string
	Cancel string
}

// deleteCharacterPage asks for a confirmation before deleting.
func (app *application) deleteCharacterPage(w http.ResponseWriter, r *http.Request) {
	s := app.characterScreen(r)
	id := r.PathValue("id")
	if !s.RequestDelete(id) {
		app.notFound(w, r)
		return
	}
	c, _ := s.PendingDelete()
	app.render(w, r, http.StatusOK, "delete", deleteTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Name:             c.Name,
		Action:           "/characters/" + url.PathEscape(id) + "/delete",
		Cancel:           "/characters",
	})
}

func (app *application) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	s := app.characterScreen(r)
	id := r.PathValue("id")
	if !s.RequestDelete(id) {
		app.flash(r, "Character not found.")
		http.Redirect(w, r, "/characters", http.StatusSeeOther)
		return
	}
	c, _ := s.PendingDelete()
	err := s.ConfirmDelete(r.Context(), app.characters.Delete)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		app.flash(r, "Character not found.")
	case err != nil:
		app.serverError(w, r, err)
		return
	default:
		app.metrics.Write("character", "delete")
		app.flash(r, c.Name+" deleted.")
	}
	http.Redirect(w, r, "/characters", http.StatusSeeOther)
}
