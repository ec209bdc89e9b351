package main

import (
	"flag"
	"net/http"

	"github.com/threadview-dev/threadview/internal/config"
	"github.com/threadview-dev/threadview/internal/logger"
	"github.com/threadview-dev/threadview/internal/router"
	"github.com/threadview-dev/threadview/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("setup failed", "err", err)
		return
	}
	defer deps.Cleanup()

	r := router.New(deps, cfg.Public.Server.AllowedOrigins)

	logger.Log.Info("listening", "addr", cfg.Public.Server.Addr)
	if err := http.ListenAndServe(cfg.Public.Server.Addr, r); err != nil {
		logger.Log.Error("server stopped", "err", err)
	}
}
