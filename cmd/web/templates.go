package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/myrjola/masks/internal/board"
	"github.com/myrjola/masks/internal/contexthelpers"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/screens"
	"github.com/myrjola/masks/ui"
)

const flashSessionKey = "flash"

type BaseTemplateData struct {
	CurrentPath string
	Flash       string
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
		Flash:       app.sessionManager.PopString(r.Context(), flashSessionKey),
	}
}

// flash shows msg once on the next rendered page.
func (app *application) flash(r *http.Request, msg string) {
	app.sessionManager.Put(r.Context(), flashSessionKey, msg)
}

var templateFuncs = template.FuncMap{
	// The nonce and csrf functions are overridden in render.
	"nonce": func() string {
		panic("not implemented")
	},
	"csrf": func() string {
		panic("not implemented")
	},
	"list": screens.FormatList,
	"date": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
	"month": func(t time.Time) string {
		return t.Format("January 2006")
	},
	"monthParam": func(t time.Time) string {
		return t.Format("2006-01")
	},
	"centre": board.Centre,
	"mid": func(a, b float64) float64 {
		return (a + b) / 2 //nolint:mnd // midpoint
	},
}

// newTemplateCache parses a template set per directory in ui/templates/pages.
//
// Every directory has to include a template named "page" that is rendered inside "base".
func newTemplateCache() (map[string]*template.Template, error) {
	pages, err := fs.Glob(ui.Files, "templates/pages/*")
	if err != nil {
		return nil, errors.Wrap(err, "glob pages")
	}
	cache := make(map[string]*template.Template, len(pages))
	for _, dir := range pages {
		name := path.Base(dir)
		var t *template.Template
		if t, err = template.New(name).Funcs(templateFuncs).ParseFS(ui.Files,
			"templates/base.gohtml",
			"templates/partials/*.gohtml",
			dir+"/*.gohtml",
		); err != nil {
			return nil, errors.Wrap(err, "parse page", slog.String("page", name))
		}
		cache[name] = t
	}
	return cache, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	app.renderTemplate(w, r, status, page, "base", data)
}

// renderFragment renders only the named template of page, e.g., for htmx requests.
func (app *application) renderFragment(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	data any,
) {
	app.renderTemplate(w, r, status, page, name, data)
}

func (app *application) renderTemplate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	data any,
) {
	cached, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, errors.New("template not found", slog.String("template", page)))
		return
	}
	// Clone so that the per-request functions don't leak between concurrent requests.
	t, err := cached.Clone()
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "clone template", slog.String("template", page)))
		return
	}

	buf := new(bytes.Buffer)
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	})
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
