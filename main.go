package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"petris/internal/config"
	"petris/internal/logger"
	ui "petris/internal/ui"
	"petris/processing/server"
	"petris/processing/staging"
)

func main() {
	log := logger.New(zerolog.InfoLevel)

	baseDir, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot determine base directory")
	}

	cfg := config.LoadConfigFile(config.DefaultConfigPath)

	area := staging.NewArea(
		filepath.Join(os.TempDir(), "petris-staging"),
		logger.Component(log, "staging"),
	)

	srv := server.New(area, logger.Component(log, "server"))
	defer srv.Shutdown()

	app := ui.CreateApp(srv, cfg, baseDir, logger.Component(log, "ui"))

	app.Run()
}
