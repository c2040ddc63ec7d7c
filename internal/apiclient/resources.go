package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
)

func (c *Client) ListCharacters(ctx context.Context) ([]models.Character, error) {
	var out []models.Character
	if err := c.call(ctx, http.MethodGet, "/characters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	var out models.Character
	if err := c.call(ctx, http.MethodGet, "/characters/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCharacter(ctx context.Context, in models.CharacterInput) (*models.Character, error) {
	var out models.Character
	if err := c.call(ctx, http.MethodPost, "/characters", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCharacter(ctx context.Context, id string, in models.CharacterInput) (*models.Character, error) {
	var out models.Character
	if err := c.call(ctx, http.MethodPut, "/characters/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCharacter(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/characters/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	if err := c.call(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var out models.Session
	if err := c.call(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchSessions finds sessions whose title, location, summary or details contain q.
func (c *Client) SearchSessions(ctx context.Context, q string) ([]models.Session, error) {
	var out []models.Session
	path := "/sessions/search?" + url.Values{"q": {q}}.Encode()
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionsByTags lists sessions tagged with any of tags.
func (c *Client) SessionsByTags(ctx context.Context, tags []string) ([]models.Session, error) {
	var out []models.Session
	path := "/sessions/tags?" + url.Values{"tags": {strings.Join(tags, ",")}}.Encode()
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSession(ctx context.Context, in models.SessionInput) (*models.Session, error) {
	var out models.Session
	if err := c.call(ctx, http.MethodPost, "/sessions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSession(ctx context.Context, id string, in models.SessionInput) (*models.Session, error) {
	var out models.Session
	if err := c.call(ctx, http.MethodPut, "/sessions/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Board(ctx context.Context) (*models.Board, error) {
	var out models.Board
	if err := c.call(ctx, http.MethodGet, "/investigation", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateNode(ctx context.Context, in models.NodeInput) (*models.Node, error) {
	var out models.Node
	if err := c.call(ctx, http.MethodPost, "/investigation/nodes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateConnection(ctx context.Context, in models.ConnectionInput) (*models.Connection, error) {
	var out models.Connection
	if err := c.call(ctx, http.MethodPost, "/investigation/connections", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNode(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, "/investigation/nodes/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListEvents lists calendar events between the inclusive YYYY-MM-DD bounds. An empty bound is open.
func (c *Client) ListEvents(ctx context.Context, from, to string) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	query := url.Values{}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}
	path := "/calendar"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// healthURL is served next to the API root, e.g., https://host/health for https://host/api.
func (c *Client) healthURL() string {
	return strings.TrimSuffix(c.baseURL, "/api") + "/health"
}

// Health makes a single request to the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, c.healthURL(), nil, nil)
}

// WarmUp polls the liveness endpoint every interval until it answers or ctx ends.
// It returns the number of attempts it took.
func (c *Client) WarmUp(ctx context.Context, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for attempt := 1; ; attempt++ {
		err := c.Health(ctx)
		if err == nil {
			c.logger.LogAttrs(ctx, slog.LevelInfo, "api is awake", slog.Int("attempts", attempt))
			return attempt, nil
		}
		c.logger.LogAttrs(ctx, slog.LevelDebug, "api not ready", slog.Int("attempt", attempt), errors.SlogError(err))
		select {
		case <-ctx.Done():
			return attempt, errors.Wrap(errors.Join(ctx.Err(), err), "warm up api",
				slog.String("url", c.healthURL()), slog.Int("attempts", attempt))
		case <-ticker.C:
		}
	}
}
