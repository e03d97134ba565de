package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"videoprompt/config"
	"videoprompt/core"
	"videoprompt/core/videoprompt"
	"videoprompt/log"
	"videoprompt/platforms/discord"
	"videoprompt/platforms/matrix"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load config
	cfg, err := config.Load("config.toml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.SetLevel(cfg.Log.Level)

	generator, err := videoprompt.NewFromConfig(ctx, cfg.Gemini, videoprompt.WithMaxVideoBytes(cfg.Video.MaxBytes))
	if err != nil {
		log.Fatalf("Failed to create prompt generator: %v", err)
	}
	log.Infof("Using Gemini model %s", generator.Model())

	bot := core.NewBot(generator, &cfg.Bot)

	if cfg.Discord.Enabled {
		adapter, err := discord.NewDiscordAdapter(cfg.Discord.Token, bot)
		if err != nil {
			log.Fatalf("Failed to create discord adapter: %v", err)
		}
		if err := adapter.Start(ctx); err != nil {
			log.Fatalf("Discord failed: %v", err)
		}
		defer adapter.Close()
	}

	if cfg.Matrix.Homeserver == "" {
		if !cfg.Discord.Enabled {
			log.Fatal("Neither matrix nor discord is configured")
		}
		<-ctx.Done()
		return
	}

	// get matrix client
	client, err := matrix.GetMatrixClient(ctx, &cfg.Matrix)
	if err != nil {
		log.Fatalf("Auth failed: %v", err)
	}
	log.Infof("Logged in as %s (device %s)", client.UserID, client.DeviceID)

	if err := matrix.InitCrypto(ctx, client, cfg.Matrix.CryptoDBPath, cfg.Matrix.PickleKey); err != nil {
		log.Fatalf("Crypto setup failed: %v", err)
	}

	if err := client.SetDisplayName(ctx, cfg.Bot.Name); err != nil {
		log.Warnf("Failed to set display name: %v", err)
	}

	log.Info("🚀 Starting bot...")
	adapter := matrix.NewMatrixAdapter(client, bot, cfg.Matrix.AutoJoinInvites)
	if err := adapter.Start(ctx); err != nil {
		log.Fatalf("Bot failed: %v", err)
	}
}
