package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/fsx"
	"github.com/agenthub-dev/agenthub/core/store"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(arguments []string) int {
	flagSet := flag.NewFlagSet("agenthub-server", flag.ContinueOnError)

	var addr string
	var dbPath string

	flagSet.StringVar(&addr, "addr", ":8080", "listen address")
	flagSet.StringVar(&dbPath, "db", "", "path to the registry database (default under the agenthub home)")

	if err := flagSet.Parse(arguments); err != nil {
		return 2
	}

	if dbPath == "" {
		resolved, err := config.DatabasePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "agenthub-server: %v\n", err)
			return 1
		}
		dbPath = resolved
	}
	if err := fsx.EnsureDir(filepath.Dir(dbPath), 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "agenthub-server: %v\n", err)
		return 1
	}
	registry, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agenthub-server: %v\n", err)
		return 1
	}
	defer func() {
		_ = registry.Close()
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(registry),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("agenthub-server %s listening on %s (db %s)\n", version, addr, dbPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "agenthub-server: %v\n", err)
			return 1
		}
	case <-shutdownCtx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "agenthub-server: shutdown: %v\n", err)
			return 1
		}
	}
	return 0
}
