package main

import (
	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/app"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/config"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	if err := db.Init(cfg.PostgresDSN()); err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	app.Start(cfg)
}
