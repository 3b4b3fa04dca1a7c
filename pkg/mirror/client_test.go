// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func TestNewMirrorClient(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)

	mc, err := NewMirrorClient(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMirrorClient: %v", err)
	}
	if mc.session == nil {
		t.Fatal("session not created")
	}

	wantIntents := discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	if mc.session.Identify.Intents != wantIntents {
		t.Errorf("intents = %d, want %d", mc.session.Identify.Intents, wantIntents)
	}
	if mc.store == nil || mc.guard == nil || mc.dispatch == nil {
		t.Error("engine components not wired")
	}
}
