package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/screens"
)

// formParser reads typed values from a submitted form and collects the fields that failed to parse.
//
// Field names follow the JSON paths of the payload so that parse and validation errors share keys.
type formParser struct {
	values url.Values
	errors map[string]string
}

func newFormParser(values url.Values) *formParser {
	return &formParser{values: values, errors: make(map[string]string)}
}

func (p *formParser) str(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p *formParser) number(key string) int {
	return p.numberAt(key, p.str(key))
}

func (p *formParser) numberAt(key, raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.errors[key] = "must be a number"
		return 0
	}
	return v
}

func (p *formParser) float(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.str(key)), 64)
	if err != nil {
		p.errors[key] = "must be a number"
		return 0
	}
	return v
}

func (p *formParser) checked(key string) bool {
	return p.values.Get(key) != ""
}

// at returns the i-th value of a repeated field, or "" when the row lacks it.
func (p *formParser) at(key string, i int) string {
	vs := p.values[key]
	if i >= len(vs) {
		return ""
	}
	return strings.TrimSpace(vs[i])
}

func (p *formParser) rows(key string) int {
	return len(p.values[key])
}

// mergeFieldErrors adds the validation errors in src to dst. Parse errors already in dst take precedence.
func mergeFieldErrors(dst, src map[string]string) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}

// parseOp splits an op button value such as "remove-skill:2" into the op and its row index.
func parseOp(raw string) (string, int) {
	op, index, found := strings.Cut(raw, ":")
	if !found {
		return op, -1
	}
	i, err := strconv.Atoi(index)
	if err != nil {
		return op, -1
	}
	return op, i
}

func parseCharacterForm(values url.Values) (*screens.CharacterForm, map[string]string) {
	p := newFormParser(values)
	form := &screens.CharacterForm{
		ID: p.str("id"),
		Input: models.CharacterInput{
			Name:       p.str("name"),
			Occupation: p.str("occupation"),
			Image:      p.str("image"),
			Background: p.str("background"),
			Stats: models.Stats{
				For: p.number("stats.For"),
				Con: p.number("stats.Con"),
				Tam: p.number("stats.Tam"),
				Des: p.number("stats.Des"),
				Apa: p.number("stats.Apa"),
				Edu: p.number("stats.Edu"),
				Int: p.number("stats.Int"),
				Pod: p.number("stats.Pod"),
			},
			MentalHealth: models.MentalHealth{
				Sanity:           p.number("mentalHealth.sanity"),
				MaxSanity:        p.number("mentalHealth.maxSanity"),
				TempSanity:       p.checked("mentalHealth.tempSanity"),
				IndefiniteSanity: p.checked("mentalHealth.indefiniteSanity"),
			},
			Skills:    []models.Skill{},
			Equipment: []models.Equipment{},
			Wounds:    p.number("wounds"),
			MaxHealth: p.number("maxHealth"),
		},
	}
	form.SetTalents(values.Get("pulpTalents"))
	form.SetPhobias(values.Get("mentalHealth.phobias"))
	form.SetManias(values.Get("mentalHealth.manias"))

	for i := range p.rows("skill_name") {
		form.Input.Skills = append(form.Input.Skills, models.Skill{
			Name:     p.at("skill_name", i),
			Value:    p.numberAt("skills["+strconv.Itoa(i)+"].value", p.at("skill_value", i)),
			Category: models.SkillCategory(p.at("skill_category", i)),
		})
	}
	for i := range p.rows("equipment_name") {
		form.Input.Equipment = append(form.Input.Equipment, models.Equipment{
			Name:        p.at("equipment_name", i),
			Description: p.at("equipment_description", i),
			Type:        models.EquipmentType(p.at("equipment_type", i)),
		})
	}
	return form, p.errors
}

func parseSessionForm(values url.Values) (*screens.SessionForm, map[string]string) {
	p := newFormParser(values)
	form := &screens.SessionForm{
		ID: p.str("id"),
		Input: models.SessionInput{
			Title:    p.str("title"),
			Date:     p.str("date"),
			Location: p.str("location"),
			Summary:  p.str("summary"),
			Details:  values.Get("details"),
			Clues:    []models.Clue{},
			Items:    []models.Item{},
		},
	}
	form.SetTags(values.Get("tags"))
	form.SetImages(values.Get("images"))

	for i := range p.rows("clue_name") {
		form.Input.Clues = append(form.Input.Clues, models.Clue{
			Name:        p.at("clue_name", i),
			Description: p.at("clue_description", i),
			Type:        models.ClueType(p.at("clue_type", i)),
			Image:       p.at("clue_image", i),
			Tag:         p.at("clue_tag", i),
			Location:    p.at("clue_location", i),
		})
	}
	for i := range p.rows("item_name") {
		form.Input.Items = append(form.Input.Items, models.Item{
			Name:        p.at("item_name", i),
			Description: p.at("item_description", i),
			Type:        models.ItemType(p.at("item_type", i)),
		})
	}
	return form, p.errors
}
