// Command imgpress is the entrypoint for the image compression proxy.
// It loads configuration, initializes logging and libvips, and serves the
// HTTP transport until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imgpress/imgpress/internal/codec"
	"github.com/imgpress/imgpress/internal/config"
	"github.com/imgpress/imgpress/internal/logging"
	"github.com/imgpress/imgpress/internal/server"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	// 1. Load .env (best effort) and config from the environment.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgpress: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgpress: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("env", string(cfg.Env)).
		Int("default_quality", cfg.DefaultQuality).
		Int("avif_dimension_limit", cfg.Tunables.AVIFDimensionLimit).
		Int("max_concurrent_encodes", cfg.MaxConcurrentEncodes).
		Msg("imgpress starting")

	// 2. Bring up libvips once for the process lifetime.
	codec.Startup(cfg.VipsConcurrency)
	defer codec.Shutdown()

	// 3. Serve until SIGINT/SIGTERM, then drain in-flight requests.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := server.NewApp(cfg, log, codec.NewVips())
	if err := app.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
