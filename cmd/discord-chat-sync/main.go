// Copyright 2025-2026 Azisaba Network

// Command discord-chat-sync mirrors conversation between two paired
// Discord channels: messages are re-posted under the original author's
// identity through webhooks, and threads opened under either channel are
// mirrored as linked threads under the other.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/azisaba/discord-chat-sync/pkg/mirror"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := mirror.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.LogLevel != "" {
		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("Invalid log level")
		}
		log = log.Level(lvl)
	}

	client, err := mirror.NewMirrorClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create mirror client")
	}
	if err := client.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("Shutting down")
	client.Disconnect()
}
