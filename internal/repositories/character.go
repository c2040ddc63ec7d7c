package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/sqlite"
)

type CharacterRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCharacterRepository(dbs *sqlite.Database, logger *slog.Logger) *CharacterRepository {
	return &CharacterRepository{
		dbs:    dbs,
		logger: logger.With("source", "CharacterRepository"),
	}
}

type characterRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Occupation string `db:"occupation"`
	Image      string `db:"image"`
	Background string `db:"background"`
	models.Stats
	Sanity           int       `db:"sanity"`
	MaxSanity        int       `db:"max_sanity"`
	TempSanity       bool      `db:"temp_sanity"`
	IndefiniteSanity bool      `db:"indefinite_sanity"`
	Wounds           int       `db:"wounds"`
	MaxHealth        int       `db:"max_health"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type skillRow struct {
	CharacterID string `db:"character_id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Value       int    `db:"value"`
	Category    string `db:"category"`
}

type equipmentRow struct {
	CharacterID string `db:"character_id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        string `db:"type"`
}

type traitKind string

const (
	traitTalent traitKind = "talent"
	traitPhobia traitKind = "phobia"
	traitMania  traitKind = "mania"
)

type traitRow struct {
	CharacterID string    `db:"character_id"`
	Kind        traitKind `db:"kind"`
	Position    int       `db:"position"`
	Value       string    `db:"value"`
}

const characterColumns = `id, name, occupation, image, background,
	stat_for, stat_con, stat_tam, stat_des, stat_apa, stat_edu, stat_int, stat_pod,
	sanity, max_sanity, temp_sanity, indefinite_sanity, wounds, max_health, created_at, updated_at`

// List returns every character ordered by name.
func (r *CharacterRepository) List(ctx context.Context) ([]models.Character, error) {
	tx, err := r.dbs.ReadOnly.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	var rows []characterRow
	if err = tx.SelectContext(ctx, &rows,
		`SELECT `+characterColumns+` FROM characters ORDER BY name COLLATE NOCASE, created_at`); err != nil {
		return nil, errors.Wrap(err, "select characters")
	}
	characters, err := r.assemble(ctx, tx, rows, "")
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// Get returns the character with id or ErrNotFound.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*models.Character, error) {
	tx, err := r.dbs.ReadOnly.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	var row characterRow
	if err = tx.GetContext(ctx, &row, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "get character", slog.String("id", id))
		}
		return nil, errors.Wrap(err, "select character", slog.String("id", id))
	}
	characters, err := r.assemble(ctx, tx, []characterRow{row}, id)
	if err != nil {
		return nil, err
	}
	return &characters[0], nil
}

// Create stores a new character with a generated id.
func (r *CharacterRepository) Create(ctx context.Context, in models.CharacterInput) (*models.Character, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	row := newCharacterRow(id, in, now)
	if _, err = tx.NamedExecContext(ctx, `INSERT INTO characters (`+characterColumns+`) VALUES (
	:id, :name, :occupation, :image, :background,
	:stat_for, :stat_con, :stat_tam, :stat_des, :stat_apa, :stat_edu, :stat_int, :stat_pod,
	:sanity, :max_sanity, :temp_sanity, :indefinite_sanity, :wounds, :max_health, :created_at, :updated_at)`,
		row); err != nil {
		return nil, errors.Wrap(err, "insert character")
	}
	if err = insertCharacterChildren(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	c := toCharacter(row)
	fillCharacter(&c, in)
	return &c, nil
}

// Update replaces every field and sub-list of the character with id.
func (r *CharacterRepository) Update(ctx context.Context, id string, in models.CharacterInput) (*models.Character, error) {
	now := time.Now().UTC()

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	row := newCharacterRow(id, in, now)
	res, err := tx.NamedExecContext(ctx, `UPDATE characters SET
	name = :name, occupation = :occupation, image = :image, background = :background,
	stat_for = :stat_for, stat_con = :stat_con, stat_tam = :stat_tam, stat_des = :stat_des,
	stat_apa = :stat_apa, stat_edu = :stat_edu, stat_int = :stat_int, stat_pod = :stat_pod,
	sanity = :sanity, max_sanity = :max_sanity, temp_sanity = :temp_sanity,
	indefinite_sanity = :indefinite_sanity, wounds = :wounds, max_health = :max_health, updated_at = :updated_at
WHERE id = :id`, row)
	if err != nil {
		return nil, errors.Wrap(err, "update character", slog.String("id", id))
	}
	if err = requireAffected(res, slog.String("id", id)); err != nil {
		return nil, err
	}
	if err = tx.GetContext(ctx, &row.CreatedAt, `SELECT created_at FROM characters WHERE id = ?`, id); err != nil {
		return nil, errors.Wrap(err, "select created_at", slog.String("id", id))
	}
	for _, table := range []string{"character_skills", "character_equipment", "character_traits"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE character_id = ?`, id); err != nil {
			return nil, errors.Wrap(err, "clear sub-list", slog.String("table", table))
		}
	}
	if err = insertCharacterChildren(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	c := toCharacter(row)
	fillCharacter(&c, in)
	return &c, nil
}

// Delete removes the character with id together with its sub-lists.
func (r *CharacterRepository) Delete(ctx context.Context, id string) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete character", slog.String("id", id))
	}
	return requireAffected(res, slog.String("id", id))
}

// assemble loads the sub-lists of rows. An empty id loads the sub-lists of every character.
func (r *CharacterRepository) assemble(
	ctx context.Context,
	tx *sqlx.Tx,
	rows []characterRow,
	id string,
) ([]models.Character, error) {
	var (
		skills    []skillRow
		equipment []equipmentRow
		traits    []traitRow
		err       error
	)
	const filter = ` WHERE (? = '' OR character_id = ?) ORDER BY character_id, position`
	if err = tx.SelectContext(ctx, &skills,
		`SELECT character_id, position, name, value, category FROM character_skills`+filter, id, id); err != nil {
		return nil, errors.Wrap(err, "select skills")
	}
	if err = tx.SelectContext(ctx, &equipment,
		`SELECT character_id, position, name, description, type FROM character_equipment`+filter, id, id); err != nil {
		return nil, errors.Wrap(err, "select equipment")
	}
	if err = tx.SelectContext(ctx, &traits,
		`SELECT character_id, kind, position, value FROM character_traits`+filter, id, id); err != nil {
		return nil, errors.Wrap(err, "select traits")
	}

	characters := make([]models.Character, len(rows))
	byID := make(map[string]*models.Character, len(rows))
	for i, row := range rows {
		characters[i] = toCharacter(row)
		byID[row.ID] = &characters[i]
	}
	for _, s := range skills {
		if c, ok := byID[s.CharacterID]; ok {
			c.Skills = append(c.Skills, models.Skill{
				Name:     s.Name,
				Value:    s.Value,
				Category: models.SkillCategory(s.Category),
			})
		}
	}
	for _, e := range equipment {
		if c, ok := byID[e.CharacterID]; ok {
			c.Equipment = append(c.Equipment, models.Equipment{
				Name:        e.Name,
				Description: e.Description,
				Type:        models.EquipmentType(e.Type),
			})
		}
	}
	for _, t := range traits {
		c, ok := byID[t.CharacterID]
		if !ok {
			continue
		}
		switch t.Kind {
		case traitTalent:
			c.PulpTalents = append(c.PulpTalents, t.Value)
		case traitPhobia:
			c.MentalHealth.Phobias = append(c.MentalHealth.Phobias, t.Value)
		case traitMania:
			c.MentalHealth.Manias = append(c.MentalHealth.Manias, t.Value)
		}
	}
	for i := range characters {
		normalizeCharacter(&characters[i])
	}
	return characters, nil
}

func insertCharacterChildren(ctx context.Context, tx *sqlx.Tx, id string, in models.CharacterInput) error {
	if len(in.Skills) > 0 {
		rows := make([]skillRow, len(in.Skills))
		for i, s := range in.Skills {
			rows[i] = skillRow{CharacterID: id, Position: i, Name: s.Name, Value: s.Value, Category: string(s.Category)}
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO character_skills (character_id, position, name, value, category)
VALUES (:character_id, :position, :name, :value, :category)`, rows); err != nil {
			return errors.Wrap(err, "insert skills")
		}
	}
	if len(in.Equipment) > 0 {
		rows := make([]equipmentRow, len(in.Equipment))
		for i, e := range in.Equipment {
			rows[i] = equipmentRow{
				CharacterID: id, Position: i, Name: e.Name, Description: e.Description, Type: string(e.Type),
			}
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO character_equipment (character_id, position, name, description, type)
VALUES (:character_id, :position, :name, :description, :type)`, rows); err != nil {
			return errors.Wrap(err, "insert equipment")
		}
	}
	var traits []traitRow
	for kind, values := range map[traitKind][]string{
		traitTalent: in.PulpTalents,
		traitPhobia: in.MentalHealth.Phobias,
		traitMania:  in.MentalHealth.Manias,
	} {
		for i, v := range values {
			traits = append(traits, traitRow{CharacterID: id, Kind: kind, Position: i, Value: v})
		}
	}
	if len(traits) > 0 {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO character_traits (character_id, kind, position, value)
VALUES (:character_id, :kind, :position, :value)`, traits); err != nil {
			return errors.Wrap(err, "insert traits")
		}
	}
	return nil
}

func newCharacterRow(id string, in models.CharacterInput, now time.Time) characterRow {
	return characterRow{
		ID:               id,
		Name:             in.Name,
		Occupation:       in.Occupation,
		Image:            in.Image,
		Background:       in.Background,
		Stats:            in.Stats,
		Sanity:           in.MentalHealth.Sanity,
		MaxSanity:        in.MentalHealth.MaxSanity,
		TempSanity:       in.MentalHealth.TempSanity,
		IndefiniteSanity: in.MentalHealth.IndefiniteSanity,
		Wounds:           in.Wounds,
		MaxHealth:        in.MaxHealth,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func toCharacter(row characterRow) models.Character {
	return models.Character{
		ID:         row.ID,
		Name:       row.Name,
		Occupation: row.Occupation,
		Image:      row.Image,
		Background: row.Background,
		Stats:      row.Stats,
		MentalHealth: models.MentalHealth{
			Sanity:           row.Sanity,
			MaxSanity:        row.MaxSanity,
			TempSanity:       row.TempSanity,
			IndefiniteSanity: row.IndefiniteSanity,
		},
		Wounds:    row.Wounds,
		MaxHealth: row.MaxHealth,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

// fillCharacter copies the sub-lists of in to c.
func fillCharacter(c *models.Character, in models.CharacterInput) {
	c.Skills = in.Skills
	c.Equipment = in.Equipment
	c.PulpTalents = in.PulpTalents
	c.MentalHealth.Phobias = in.MentalHealth.Phobias
	c.MentalHealth.Manias = in.MentalHealth.Manias
	normalizeCharacter(c)
}

func normalizeCharacter(c *models.Character) {
	c.Skills = orEmpty(c.Skills)
	c.Equipment = orEmpty(c.Equipment)
	c.PulpTalents = orEmpty(c.PulpTalents)
	c.MentalHealth.Phobias = orEmpty(c.MentalHealth.Phobias)
	c.MentalHealth.Manias = orEmpty(c.MentalHealth.Manias)
}
