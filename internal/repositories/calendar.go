package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/sqlite"
)

// CalendarRepository stores planned game dates and other group events.
type CalendarRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCalendarRepository(dbs *sqlite.Database, logger *slog.Logger) *CalendarRepository {
	return &CalendarRepository{
		dbs:    dbs,
		logger: logger.With("source", "CalendarRepository"),
	}
}

const calendarColumns = `id, title, date, time, description, type, created_at, updated_at`

// List returns the events dated between from and to inclusive, ordered by date.
// Dates are formatted as YYYY-MM-DD and an empty bound leaves that side open.
func (r *CalendarRepository) List(ctx context.Context, from, to string) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if err := r.dbs.ReadOnly.SelectContext(ctx, &events, `SELECT `+calendarColumns+` FROM calendar_events
WHERE (@from = '' OR date >= @from) AND (@to = '' OR date <= @to)
ORDER BY date, time, title`, sql.Named("from", from), sql.Named("to", to)); err != nil {
		return nil, errors.Wrap(err, "select events", slog.String("from", from), slog.String("to", to))
	}
	for i := range events {
		utcTimestamps(&events[i])
	}
	return orEmpty(events), nil
}

// Get returns the event with id or ErrNotFound.
func (r *CalendarRepository) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := r.dbs.ReadOnly.GetContext(ctx, &e,
		`SELECT `+calendarColumns+` FROM calendar_events WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "get event", slog.String("id", id))
		}
		return nil, errors.Wrap(err, "select event", slog.String("id", id))
	}
	utcTimestamps(&e)
	return &e, nil
}

// Create stores a new event. An empty type is stored as models.EventTypeOther.
func (r *CalendarRepository) Create(ctx context.Context, in models.CalendarEventInput) (*models.CalendarEvent, error) {
	now := time.Now().UTC()
	e := newCalendarEvent(uuid.NewString(), in, now)
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, `INSERT INTO calendar_events (`+calendarColumns+`)
VALUES (:id, :title, :date, :time, :description, :type, :created_at, :updated_at)`, e); err != nil {
		return nil, errors.Wrap(err, "insert event")
	}
	return &e, nil
}

// Update replaces the event with id.
func (r *CalendarRepository) Update(
	ctx context.Context,
	id string,
	in models.CalendarEventInput,
) (*models.CalendarEvent, error) {
	e := newCalendarEvent(id, in, time.Now().UTC())

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer rollback(ctx, r.logger, tx)

	res, err := tx.NamedExecContext(ctx, `UPDATE calendar_events SET
	title = :title, date = :date, time = :time, description = :description, type = :type, updated_at = :updated_at
WHERE id = :id`, e)
	if err != nil {
		return nil, errors.Wrap(err, "update event", slog.String("id", id))
	}
	if err = requireAffected(res, slog.String("id", id)); err != nil {
		return nil, err
	}
	if err = tx.GetContext(ctx, &e.CreatedAt, `SELECT created_at FROM calendar_events WHERE id = ?`, id); err != nil {
		return nil, errors.Wrap(err, "select created_at", slog.String("id", id))
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	utcTimestamps(&e)
	return &e, nil
}

// Delete removes the event with id.
func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete event", slog.String("id", id))
	}
	return requireAffected(res, slog.String("id", id))
}

func newCalendarEvent(id string, in models.CalendarEventInput, now time.Time) models.CalendarEvent {
	eventType := in.Type
	if eventType == "" {
		eventType = models.EventTypeOther
	}
	return models.CalendarEvent{
		ID:          id,
		Title:       in.Title,
		Date:        in.Date,
		Time:        in.Time,
		Description: in.Description,
		Type:        eventType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func utcTimestamps(e *models.CalendarEvent) {
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
}
