package models

import "time"

// Stats holds the eight characteristic scores of an investigator.
//
// The keys follow the abbreviations printed on the group's character sheets.
type Stats struct {
	For int `json:"For" db:"stat_for" validate:"min=1,max=99"`
	Con int `json:"Con" db:"stat_con" validate:"min=1,max=99"`
	Tam int `json:"Tam" db:"stat_tam" validate:"min=1,max=99"`
	Des int `json:"Des" db:"stat_des" validate:"min=1,max=99"`
	Apa int `json:"Apa" db:"stat_apa" validate:"min=1,max=99"`
	Edu int `json:"Edu" db:"stat_edu" validate:"min=1,max=99"`
	Int int `json:"Int" db:"stat_int" validate:"min=1,max=99"`
	Pod int `json:"Pod" db:"stat_pod" validate:"min=1,max=99"`
}

// MentalHealth is the sanity record of an investigator.
type MentalHealth struct {
	Sanity           int      `json:"sanity" validate:"min=0,max=99"`
	MaxSanity        int      `json:"maxSanity" validate:"min=1,max=99"`
	TempSanity       bool     `json:"tempSanity"`
	IndefiniteSanity bool     `json:"indefiniteSanity"`
	Phobias          []string `json:"phobias" validate:"dive,required"`
	Manias           []string `json:"manias" validate:"dive,required"`
}

type SkillCategory string

// The "pratical" spelling is what the front end has always sent and stored.
const (
	SkillCategoryCombat    SkillCategory = "combat"
	SkillCategoryAcademic  SkillCategory = "academic"
	SkillCategoryPractical SkillCategory = "pratical"
	SkillCategorySocial    SkillCategory = "social"
)

// IsValid reports whether c is one of the known skill categories.
func (c SkillCategory) IsValid() bool {
	switch c {
	case SkillCategoryCombat, SkillCategoryAcademic, SkillCategoryPractical, SkillCategorySocial:
		return true
	default:
		return false
	}
}

// Skill is a percentile skill on the character sheet.
type Skill struct {
	Name     string        `json:"name" validate:"required"`
	Value    int           `json:"value" validate:"min=0,max=100"`
	Category SkillCategory `json:"category" validate:"oneof=combat academic pratical social"`
}

type EquipmentType string

const (
	EquipmentTypeWeapon   EquipmentType = "weapon"
	EquipmentTypeTool     EquipmentType = "tool"
	EquipmentTypeBook     EquipmentType = "book"
	EquipmentTypeArtifact EquipmentType = "artifact"
)

// IsValid reports whether t is one of the known equipment types.
func (t EquipmentType) IsValid() bool {
	switch t {
	case EquipmentTypeWeapon, EquipmentTypeTool, EquipmentTypeBook, EquipmentTypeArtifact:
		return true
	default:
		return false
	}
}

// Equipment is an object carried by an investigator.
type Equipment struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Type        EquipmentType `json:"type" validate:"oneof=weapon tool book artifact"`
}

// CharacterInput is the payload accepted when creating or replacing a character.
type CharacterInput struct {
	Name         string       `json:"name" validate:"required,max=200"`
	Occupation   string       `json:"occupation" validate:"required,max=200"`
	Image        string       `json:"image" validate:"omitempty,url"`
	Background   string       `json:"background"`
	Stats        Stats        `json:"stats"`
	MentalHealth MentalHealth `json:"mentalHealth"`
	Skills       []Skill      `json:"skills" validate:"dive"`
	Equipment    []Equipment  `json:"equipment" validate:"dive"`
	PulpTalents  []string     `json:"pulpTalents" validate:"dive,required"`
	Wounds       int          `json:"wounds" validate:"min=0"`
	MaxHealth    int          `json:"maxHealth" validate:"min=1"`
}

// Character is an investigator sheet. Each character is a self-contained aggregate.
type Character struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Occupation   string       `json:"occupation"`
	Image        string       `json:"image"`
	Background   string       `json:"background"`
	Stats        Stats        `json:"stats"`
	MentalHealth MentalHealth `json:"mentalHealth"`
	Skills       []Skill      `json:"skills"`
	Equipment    []Equipment  `json:"equipment"`
	PulpTalents  []string     `json:"pulpTalents"`
	Wounds       int          `json:"wounds"`
	MaxHealth    int          `json:"maxHealth"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Input returns the editable fields of c, e.g., for pre-filling an edit form.
func (c Character) Input() CharacterInput {
	return CharacterInput{
		Name:         c.Name,
		Occupation:   c.Occupation,
		Image:        c.Image,
		Background:   c.Background,
		Stats:        c.Stats,
		MentalHealth: c.MentalHealth,
		Skills:       c.Skills,
		Equipment:    c.Equipment,
		PulpTalents:  c.PulpTalents,
		Wounds:       c.Wounds,
		MaxHealth:    c.MaxHealth,
	}
}
