package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var errMalformedJSON = errors.NewSentinel("malformed JSON")

// malformedError is a request body that could not be decoded. It matches errMalformedJSON.
type malformedError struct {
	cause error
}

func (e *malformedError) Error() string {
	return "malformed JSON: " + e.cause.Error()
}

func (e *malformedError) Unwrap() error {
	return e.cause
}

func (e *malformedError) Is(target error) bool {
	return target == errMalformedJSON //nolint:errorlint // sentinel comparison
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

// decodeJSON reads a single JSON object into dst and validates it. Unknown fields, trailing data and bodies over
// maxBodyBytes are rejected with errMalformedJSON. Rule violations are returned as *validation.Error.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &malformedError{cause: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &malformedError{cause: errors.New("body must contain a single JSON object")}
	}
	if err := app.validate.Struct(dst); err != nil {
		return err //nolint:wrapcheck // *validation.Error is reported to the client as is.
	}
	return nil
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.apiServerError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// apiError maps err to a JSON error response. Only malformed and invalid input and missing records are reported
// in detail. Everything else is logged and answered with a generic 500.
func (app *application) apiError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *validation.Error
	switch {
	case errors.As(err, &invalid):
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: invalid.Fields})
	case errors.Is(err, errMalformedJSON):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "malformed request body", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, repositories.ErrSelfConnection):
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:  "invalid input",
			Fields: map[string]string{"to": "must differ from from"},
		})
	case errors.Is(err, repositories.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		app.apiServerError(w, r, err)
	}
}

func (app *application) apiServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal server error"}`))
}

// pathInt64 parses the integer path value name. Malformed ids are reported as missing records.
func pathInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, errors.Wrap(repositories.ErrNotFound, "parse id", slog.String(name, r.PathValue(name)))
	}
	return id, nil
}

// isHxRequest reports whether htmx sent the request. The htmx middleware of the page chain parses the headers.
func (app *application) isHxRequest(w http.ResponseWriter, r *http.Request) bool {
	return app.htmx.NewHandler(w, r).Request().HxRequest
}
