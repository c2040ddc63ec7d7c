package models

import "time"

type ClueType string

const (
	ClueTypeDocument ClueType = "document"
	ClueTypeEvidence ClueType = "evidence"
)

// Clue is a piece of evidence discovered during a session. It is only addressable through its session.
type Clue struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Type        ClueType `json:"type" validate:"oneof=document evidence"`
	Image       string   `json:"image,omitempty" validate:"omitempty,url"`
	Tag         string   `json:"tag,omitempty"`
	Location    string   `json:"location,omitempty"`
}

type ItemType string

const (
	ItemTypeKey    ItemType = "key"
	ItemTypeBook   ItemType = "book"
	ItemTypeWeapon ItemType = "weapon"
	ItemTypeMisc   ItemType = "misc"
)

// Item is an object collected during a session.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Type        ItemType `json:"type" validate:"oneof=key book weapon misc"`
}

// SessionInput is the payload accepted when creating or replacing a session note.
//
// Clue and item ids in the payload are ignored. New ids are generated on every write.
type SessionInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	Location string   `json:"location" validate:"max=200"`
	Summary  string   `json:"summary"`
	Details  string   `json:"details"`
	Tags     []string `json:"tags" validate:"dive,required,max=50"`
	Images   []string `json:"images" validate:"dive,url"`
	Clues    []Clue   `json:"clues" validate:"dive"`
	Items    []Item   `json:"items" validate:"dive"`
}

// Session is the note of a played game session. Details is markdown.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Location  string    `json:"location"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details"`
	Tags      []string  `json:"tags"`
	Images    []string  `json:"images"`
	Clues     []Clue    `json:"clues"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input returns the editable fields of s.
func (s Session) Input() SessionInput {
	return SessionInput{
		Title:    s.Title,
		Date:     s.Date,
		Location: s.Location,
		Summary:  s.Summary,
		Details:  s.Details,
		Tags:     s.Tags,
		Images:   s.Images,
		Clues:    s.Clues,
		Items:    s.Items,
	}
}

// HasTag reports whether the session is tagged with tag. The comparison is case-sensitive.
func (s Session) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
