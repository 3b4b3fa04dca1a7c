// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// threadAPI is the slice of the platform surface the mirroring engine
// needs. The production implementation wraps the Discord session; tests
// inject a fake.
type threadAPI interface {
	channelResolver
	ThreadJoin(ctx context.Context, threadID string) error
	ThreadStart(ctx context.Context, channelID string, start *discordgo.ThreadStart) (*discordgo.Channel, error)
	// FirstMessage returns the oldest message in a thread, or nil if the
	// thread has none. Absence is a normal outcome.
	FirstMessage(ctx context.Context, threadID string) (*discordgo.Message, error)
}

// MirrorClient ties the gateway session to the mirroring engine: the
// pairing store, the race guard and the relay dispatcher.
type MirrorClient struct {
	cfg      *Config
	session  *discordgo.Session
	api      threadAPI
	store    *PairingStore
	guard    *RaceGuard
	dispatch *Dispatcher
	log      zerolog.Logger
}

// NewMirrorClient builds the engine and registers the gateway handlers.
// Connect must be called to start serving events.
func NewMirrorClient(cfg *Config, log zerolog.Logger) (*MirrorClient, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	store := NewPairingStore(cfg.DataDir, log)
	guard := NewRaceGuard(log)
	api := &sessionAPI{session: session}
	sender := &sessionWebhookSender{session: session}

	mc := &MirrorClient{
		cfg:      cfg,
		session:  session,
		api:      api,
		store:    store,
		guard:    guard,
		dispatch: NewDispatcher(cfg, store, api, sender, log),
		log:      log.With().Str("component", "mirror_client").Logger(),
	}
	session.AddHandler(mc.handleReady)
	session.AddHandler(mc.handleMessageCreate)
	session.AddHandler(mc.handleThreadCreate)
	return mc, nil
}

// Connect loads the persisted pairings, starts the ledger sweep and opens
// the gateway connection.
func (mc *MirrorClient) Connect() error {
	if err := mc.store.Load(); err != nil {
		return fmt.Errorf("failed to load thread pairings: %w", err)
	}
	mc.guard.Start()
	if err := mc.session.Open(); err != nil {
		mc.guard.Stop()
		return fmt.Errorf("failed to open Discord gateway: %w", err)
	}
	return nil
}

// Disconnect closes the gateway connection and stops the ledger sweep.
func (mc *MirrorClient) Disconnect() {
	if err := mc.session.Close(); err != nil {
		mc.log.Warn().Err(err).Msg("Failed to close Discord session cleanly")
	}
	mc.guard.Stop()
}
