package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/logging"
)

// LogAddrKey is the log attribute that carries the address the server listens on.
const LogAddrKey = "addr"

// ReadyPath is polled until the server answers 200 OK.
const ReadyPath = "/health"

// RunFunc starts a server and blocks until ctx is done. It has the signature of the run function of cmd/web.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is an application started in the background of a test.
type Server struct {
	url    string
	client *Client
	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error
}

// StartServer runs the application and returns once it answers on ReadyPath.
//
// logSink receives the server logs, usually [io.Discard]. lookupEnv replaces [os.LookupEnv] for the configuration.
// run must log the listening address under [LogAddrKey], which lets the tests listen on a dynamic port. The server
// stops when ctx is done or Stop is called.
func StartServer(ctx context.Context, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (
	*Server, error,
) {
	ctx, cancel := context.WithCancelCause(ctx)
	s := &Server{cancel: cancel, done: make(chan struct{})}

	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))

	go func() {
		defer close(s.done)
		if s.err = run(ctx, logger, lookupEnv); s.err != nil {
			cancel(s.err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(context.Cause(ctx), "server exited before listening")
	case addr := <-addrCh:
		s.url = fmt.Sprintf("http://%s", addr)
	}

	var err error
	if s.client, err = NewClient(s.url); err != nil {
		cancel(err)
		return nil, errors.Wrap(err, "new client")
	}
	if err = s.client.WaitForReady(ctx, ReadyPath); err != nil {
		cancel(err)
		return nil, errors.Wrap(err, "wait for ready")
	}
	return s, nil
}

// Client returns a client with its own cookie jar. Every call returns the same client.
func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}

// Stop shuts the server down and returns the error of run, if any.
func (s *Server) Stop() error {
	s.cancel(nil)
	<-s.done
	return s.err
}
