package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/config"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/db"
	clog "github.com/HIMANSHUMISHRA389/CHAT-APP/internal/log"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/server"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/upload"
)

func main() {
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validate")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	uploader, err := upload.NewS3Uploader(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init")
	}

	r := server.SetupRouter(cfg, gdb, uploader)
	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
