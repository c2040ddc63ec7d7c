package main

import (
	"net/http"

	"github.com/myrjola/masks/internal/models"
)

func (app *application) apiListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := app.characters.List(r.Context())
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, characters)
}

func (app *application) apiGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := app.characters.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) apiCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var in models.CharacterInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	c, err := app.characters.Create(r.Context(), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("character", "create")
	app.writeJSON(w, r, http.StatusCreated, c)
}

func (app *application) apiUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var in models.CharacterInput
	if err := app.decodeJSON(w, r, &in); err != nil {
		app.apiError(w, r, err)
		return
	}
	c, err := app.characters.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("character", "update")
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) apiDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := app.characters.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.apiError(w, r, err)
		return
	}
	app.metrics.Write("character", "delete")
	app.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Character deleted successfully"})
}
