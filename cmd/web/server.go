package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myrjola/masks/internal/errors"
	"golang.org/x/sync/errgroup"
)

// configureAndStartServer serves until ctx is done or the process receives SIGINT or SIGTERM. In-flight requests
// get the request timeout to finish.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       time.Minute,
		ReadTimeout:       app.cfg.RequestTimeout,
		WriteTimeout:      app.cfg.RequestTimeout,
		ReadHeaderTimeout: time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}
	// The tests pick up the dynamically allocated port from the "addr" attribute.
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String("addr", listener.Addr().String()))

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(stopCtx)
	g.Go(func() error {
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			return errors.Wrap(serveErr, "server serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.RequestTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			return errors.Wrap(shutdownErr, "shutdown server")
		}
		return nil
	})
	return g.Wait() //nolint:wrapcheck // Both goroutines wrap their errors.
}
