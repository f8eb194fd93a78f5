package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/flafmg/dandelion-classic/pkg/config"
	"github.com/flafmg/dandelion-classic/pkg/logging"
	"github.com/flafmg/dandelion-classic/pkg/mapbuilder"
	"github.com/flafmg/dandelion-classic/pkg/server"
)

func main() {
	configPath := flag.String("config", "server-config.yml", "Path to the server configuration file")
	mapsDir := flag.String("maps", "maps", "Directory holding .dmf world files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logging isn't up yet; a boot-fatal config error goes straight
		// to stderr.
		os.Stderr.WriteString("dandelion-classic: config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, flush, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		os.Stderr.WriteString("dandelion-classic: logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer flush()

	if err := os.MkdirAll(*mapsDir, 0o755); err != nil {
		log.Fatal("could not create maps directory", zap.String("dir", *mapsDir), zap.Error(err))
	}

	srv := server.New(cfg, log, *mapsDir)
	builder := mapbuilder.DefaultFlat()
	if err := srv.Start(builder); err != nil {
		log.Fatal("server failed to start", zap.Error(err))
	}

	log.Info("dandelion-classic is running",
		zap.String("name", cfg.Name),
		zap.String("addr", cfg.Addr),
		zap.Uint16("port", cfg.Port),
		zap.String("maps_dir", filepath.Clean(*mapsDir)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info("shutting down", zap.String("signal", sig.String()))
	srv.Stop()
	log.Info("shutdown complete")
}
