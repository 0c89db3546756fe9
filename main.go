package main

import (
	"context"
	"embed"
	"flag"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"github.com/zjregee/scout/internal/app"
	"github.com/zjregee/scout/internal/config"
	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/service"
)

//go:embed all:frontend/src
var assets embed.FS

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	log := logging.Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.WithError(err).Fatal("failed to set up logging")
	}

	agentService, cleanup, err := service.Bootstrap(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize agent service")
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.WithError(err).Warn("failed to close checkpoint store")
		}
	}()

	application := app.NewApp(agentService, "")

	err = wails.Run(&options.App{
		Title:     "Scout",
		Width:     800,
		Height:    680,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 30, G: 30, B: 30, A: 255},
		OnStartup:        application.Startup,
		Bind: []any{
			application,
		},
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarDefault(),
			Appearance:           mac.NSAppearanceNameDarkAqua,
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},
	})

	if err != nil {
		log.WithError(err).Error("desktop app exited with error")
	}
}
