package cloudanchor

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
)

// Run parses args, builds the server and serves until interrupted.
func Run(args []string) error {
	options, err := ParseOptions(context.Background(), args)
	if err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}
	// stdout carries the stdio transport
	logger := NewLogger(os.Stderr, options.LogLevel)
	srv, err := NewServer(options, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch options.Transport.Type {
	case TransportStreamable:
		httpServer := srv.HTTP(ctx, "")
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		logger.Info("serving streamable http", "addr", httpServer.Addr)
		if err = httpServer.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		logger.Info("serving stdio")
		return srv.Stdio(ctx).ListenAndServe()
	}
}

// ParseOptions parses command line flags; when a config URL is given the
// document is loaded first and the flags are applied on top of it.
func ParseOptions(ctx context.Context, args []string) (*Options, error) {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return nil, err
	}
	if options.ConfigURL == "" {
		options.Init()
		return options, nil
	}
	loaded, err := LoadOptions(ctx, options.ConfigURL)
	if err != nil {
		return nil, err
	}
	if _, err = flags.ParseArgs(loaded, args); err != nil {
		return nil, err
	}
	loaded.Init()
	return loaded, nil
}
