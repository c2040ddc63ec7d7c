package repositories

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/sqlite"
)

// SessionRepository stores the notes of played game sessions.
type SessionRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewSessionRepository(dbs *sqlite.Database, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		dbs:    dbs,
		logger: logger.With("source", "SessionRepository"),
	}
}

type sessionRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Date      string    `db:"date"`
	Location  string    `db:"location"`
	Summary   string    `db:"summary"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sessionTagRow struct {
	SessionID string `db:"session_id"`
	Position  int    `db:"position"`
	Tag       string `db:"tag"`
}

type sessionImageRow struct {
	SessionID string `db:"session_id"`
	Position  int    `db:"position"`
	URL       string `db:"url"`
}

type clueRow struct {
	ID          string `db:"id"`
	SessionID   string `db:"session_id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        string `db:"type"`
	Image       string `db:"image"`
	Tag         string `db:"tag"`
	Location    string `db:"location"`
}

type itemRow struct {
	ID          string `db:"id"`
	SessionID   string `db:"session_id"`
	Position    int    `db:"position"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        string `db:"type"`
}

const (
	sessionColumns = `id, title, date, location, summary, details, created_at, updated_at`
	sessionOrder   = ` ORDER BY date DESC, created_at DESC`
)

// List returns every session, the most recent game date first.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` FROM session_notes`+sessionOrder)
}

// Search returns the sessions whose title, location, summary or details contain q, ignoring case.
// An empty q matches every session.
func (r *SessionRepository) Search(ctx context.Context, q string) ([]models.Session, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.List(ctx)
	}
	pattern := containsPattern(q)
	return r.query(ctx, `SELECT `+sessionColumns+` FROM session_notes
WHERE title LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\' OR details LIKE ? ESCAPE '\'`+
		sessionOrder, pattern, pattern, pattern, pattern)
}

// ListByTags returns the sessions tagged with any of tags. Tags are compared case-sensitively.
// Without tags every session is returned.
func (r *SessionRepository) ListByTags(ctx context.Context, tags []string) ([]models.Session, error) {
	if len(tags) == 0 {
		return r.List(ctx)
	}
	query, args, err := sqlx.In(`SELECT `+sessionColumns+` FROM session_notes
WHERE id IN (SELECT session_id FROM session_tags WHERE tag IN (?))`+sessionOrder, tags)
	if err != nil {
		return nil, errors.Wrap(err, "expand tags")
	}
	return r.query(ctx, r.dbs.ReadOnly.Rebind(query), args...)
}

// Get returns the session with id or ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	sessions, err := r.query(ctx, `SELECT `+sessionColumns+` FROM session_notes WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, errors.Wrap(ErrNotFound, "get session", slog.String("id", id))
	}
	return &sessions[0], nil
}

// Create stores a new session. The session, its clues and its items get generated ids.
func (r *SessionRepository) Create(ctx context.Context, in models.SessionInput) (*models.Session, error) {
	row := newSessionRow(uuid.NewString(), in, time.Now().UTC())

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO session_notes (`+sessionColumns+`)
VALUES (:id, :title, :date, :location, :summary, :details, :created_at, :updated_at)`, row); err != nil {
		return nil, errors.Wrap(err, "insert session")
	}
	s, err := insertSessionChildren(ctx, tx, row, in)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return s, nil
}

// Update replaces the session with id. Clues and items are replaced wholesale and get new ids.
func (r *SessionRepository) Update(ctx context.Context, id string, in models.SessionInput) (*models.Session, error) {
	row := newSessionRow(id, in, time.Now().UTC())

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	res, err := tx.NamedExecContext(ctx, `UPDATE session_notes SET
	title = :title, date = :date, location = :location, summary = :summary, details = :details,
	updated_at = :updated_at
WHERE id = :id`, row)
	if err != nil {
		return nil, errors.Wrap(err, "update session", slog.String("id", id))
	}
	if err = requireAffected(res, slog.String("id", id)); err != nil {
		return nil, err
	}
	if err = tx.GetContext(ctx, &row.CreatedAt, `SELECT created_at FROM session_notes WHERE id = ?`, id); err != nil {
		return nil, errors.Wrap(err, "select created_at", slog.String("id", id))
	}
	for _, table := range []string{"session_tags", "session_images", "session_clues", "session_items"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, id); err != nil {
			return nil, errors.Wrap(err, "clear sub-list", slog.String("table", table))
		}
	}
	s, err := insertSessionChildren(ctx, tx, row, in)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return s, nil
}

// Delete removes the session with id together with its clues and items.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM session_notes WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete session", slog.String("id", id))
	}
	return requireAffected(res, slog.String("id", id))
}

// query selects sessions with stmt and loads their sub-lists in the same read transaction.
func (r *SessionRepository) query(ctx context.Context, stmt string, args ...any) ([]models.Session, error) {
	tx, err := r.dbs.ReadOnly.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	var rows []sessionRow
	if err = tx.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "select sessions")
	}
	sessions := make([]models.Session, len(rows))
	if len(rows) == 0 {
		return sessions, nil
	}
	ids := make([]string, len(rows))
	byID := make(map[string]*models.Session, len(rows))
	for i, row := range rows {
		sessions[i] = models.Session{
			ID:        row.ID,
			Title:     row.Title,
			Date:      row.Date,
			Location:  row.Location,
			Summary:   row.Summary,
			Details:   row.Details,
			CreatedAt: row.CreatedAt.UTC(),
			UpdatedAt: row.UpdatedAt.UTC(),
		}
		ids[i] = row.ID
		byID[row.ID] = &sessions[i]
	}

	var (
		tags   []sessionTagRow
		images []sessionImageRow
		clues  []clueRow
		items  []itemRow
	)
	if err = selectIn(ctx, tx, &tags, `SELECT session_id, position, tag FROM session_tags
WHERE session_id IN (?) ORDER BY session_id, position`, ids); err != nil {
		return nil, errors.Wrap(err, "select tags")
	}
	if err = selectIn(ctx, tx, &images, `SELECT session_id, position, url FROM session_images
WHERE session_id IN (?) ORDER BY session_id, position`, ids); err != nil {
		return nil, errors.Wrap(err, "select images")
	}
	if err = selectIn(ctx, tx, &clues, `SELECT id, session_id, position, name, description, type, image, tag, location
FROM session_clues WHERE session_id IN (?) ORDER BY session_id, position`, ids); err != nil {
		return nil, errors.Wrap(err, "select clues")
	}
	if err = selectIn(ctx, tx, &items, `SELECT id, session_id, position, name, description, type
FROM session_items WHERE session_id IN (?) ORDER BY session_id, position`, ids); err != nil {
		return nil, errors.Wrap(err, "select items")
	}

	for _, t := range tags {
		s := byID[t.SessionID]
		s.Tags = append(s.Tags, t.Tag)
	}
	for _, img := range images {
		s := byID[img.SessionID]
		s.Images = append(s.Images, img.URL)
	}
	for _, c := range clues {
		s := byID[c.SessionID]
		s.Clues = append(s.Clues, models.Clue{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Type:        models.ClueType(c.Type),
			Image:       c.Image,
			Tag:         c.Tag,
			Location:    c.Location,
		})
	}
	for _, it := range items {
		s := byID[it.SessionID]
		s.Items = append(s.Items, models.Item{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Type:        models.ItemType(it.Type),
		})
	}
	for i := range sessions {
		normalizeSession(&sessions[i])
	}
	return sessions, nil
}

// selectIn expands the single IN (?) of query with ids.
func selectIn(ctx context.Context, tx *sqlx.Tx, dest any, query string, ids []string) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return errors.Wrap(err, "expand ids")
	}
	if err = tx.SelectContext(ctx, dest, tx.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "select")
	}
	return nil
}

func insertSessionChildren(
	ctx context.Context,
	tx *sqlx.Tx,
	row sessionRow,
	in models.SessionInput,
) (*models.Session, error) {
	s := models.Session{
		ID:        row.ID,
		Title:     row.Title,
		Date:      row.Date,
		Location:  row.Location,
		Summary:   row.Summary,
		Details:   row.Details,
		Tags:      in.Tags,
		Images:    in.Images,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}

	if len(in.Tags) > 0 {
		tags := make([]sessionTagRow, len(in.Tags))
		for i, t := range in.Tags {
			tags[i] = sessionTagRow{SessionID: row.ID, Position: i, Tag: t}
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO session_tags (session_id, position, tag)
VALUES (:session_id, :position, :tag)`, tags); err != nil {
			return nil, errors.Wrap(err, "insert tags")
		}
	}
	if len(in.Images) > 0 {
		images := make([]sessionImageRow, len(in.Images))
		for i, u := range in.Images {
			images[i] = sessionImageRow{SessionID: row.ID, Position: i, URL: u}
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO session_images (session_id, position, url)
VALUES (:session_id, :position, :url)`, images); err != nil {
			return nil, errors.Wrap(err, "insert images")
		}
	}
	if len(in.Clues) > 0 {
		clues := make([]clueRow, len(in.Clues))
		for i, c := range in.Clues {
			c.ID = uuid.NewString()
			clues[i] = clueRow{
				ID: c.ID, SessionID: row.ID, Position: i, Name: c.Name, Description: c.Description,
				Type: string(c.Type), Image: c.Image, Tag: c.Tag, Location: c.Location,
			}
			s.Clues = append(s.Clues, c)
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO session_clues
    (id, session_id, position, name, description, type, image, tag, location)
VALUES (:id, :session_id, :position, :name, :description, :type, :image, :tag, :location)`, clues); err != nil {
			return nil, errors.Wrap(err, "insert clues")
		}
	}
	if len(in.Items) > 0 {
		items := make([]itemRow, len(in.Items))
		for i, it := range in.Items {
			it.ID = uuid.NewString()
			items[i] = itemRow{
				ID: it.ID, SessionID: row.ID, Position: i, Name: it.Name, Description: it.Description,
				Type: string(it.Type),
			}
			s.Items = append(s.Items, it)
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO session_items (id, session_id, position, name, description, type)
VALUES (:id, :session_id, :position, :name, :description, :type)`, items); err != nil {
			return nil, errors.Wrap(err, "insert items")
		}
	}
	normalizeSession(&s)
	return &s, nil
}

func newSessionRow(id string, in models.SessionInput, now time.Time) sessionRow {
	return sessionRow{
		ID:        id,
		Title:     in.Title,
		Date:      in.Date,
		Location:  in.Location,
		Summary:   in.Summary,
		Details:   in.Details,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizeSession(s *models.Session) {
	s.Tags = orEmpty(s.Tags)
	s.Images = orEmpty(s.Images)
	s.Clues = orEmpty(s.Clues)
	s.Items = orEmpty(s.Items)
}

