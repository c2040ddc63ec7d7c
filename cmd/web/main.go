package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/myrjola/masks/internal/envstruct"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/logging"
	"github.com/myrjola/masks/internal/metrics"
	"github.com/myrjola/masks/internal/pprofserver"
	"github.com/myrjola/masks/internal/repositories"
	"github.com/myrjola/masks/internal/sqlite"
	"github.com/myrjola/masks/internal/validation"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	templates      map[string]*template.Template
	validate       *validation.Validator
	metrics        *metrics.Metrics
	characters     *repositories.CharacterRepository
	sessions       *repositories.SessionRepository
	investigation  *repositories.InvestigationRepository
	calendar       *repositories.CalendarRepository
	db             *sqlite.Database
	cfg            config
	now            func() time.Time
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"MASKS_ADDR" envDefault:"localhost:3000"`
	// PprofPort is the loopback port of the pprof server, e.g., ":6060". Empty disables it.
	PprofPort string `env:"MASKS_PPROF_PORT" envDefault:""`
	// SqliteURL is the path to the database file or ":memory:".
	SqliteURL string `env:"MASKS_SQLITE_URL" envDefault:"./masks.sqlite3"`
	// CORSOrigins are the front-end origins allowed to call the JSON API.
	CORSOrigins []string `env:"MASKS_CORS_ORIGINS" envDefault:"http://localhost:5173"`
	// RequestTimeout bounds reading, writing and handling a request.
	RequestTimeout  time.Duration `env:"MASKS_REQUEST_TIMEOUT" envDefault:"5s"`
	SessionLifetime time.Duration `env:"MASKS_SESSION_LIFETIME" envDefault:"12h"`
	// SecureCookies must be false when serving plain HTTP to browsers other than on localhost.
	SecureCookies bool `env:"MASKS_SECURE_COOKIES" envDefault:"true"`
	// BoardWidth and BoardHeight are the size of the investigation board canvas in pixels.
	BoardWidth  int `env:"MASKS_BOARD_WIDTH" envDefault:"1200"`
	BoardHeight int `env:"MASKS_BOARD_HEIGHT" envDefault:"800"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pprofserver.Launch(ctx, cfg.PprofPort, logger)

	var dbs *sqlite.Database
	if dbs, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))

	store := sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour) //nolint:mnd // once a day
	defer store.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Secure = cfg.SecureCookies

	var templates map[string]*template.Template
	if templates, err = newTemplateCache(); err != nil {
		return errors.Wrap(err, "parse templates")
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		templates:      templates,
		validate:       validation.New(),
		metrics: metrics.New(map[string]*sqlx.DB{
			"readwrite": dbs.ReadWrite,
			"readonly":  dbs.ReadOnly,
		}),
		characters:    repositories.NewCharacterRepository(dbs, logger),
		sessions:      repositories.NewSessionRepository(dbs, logger),
		investigation: repositories.NewInvestigationRepository(dbs, logger),
		calendar:      repositories.NewCalendarRepository(dbs, logger),
		db:            dbs,
		cfg:           cfg,
		now:           time.Now,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))

	// A missing .env is fine. The environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
