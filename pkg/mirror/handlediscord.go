// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// handleReady logs the session identity once the gateway handshake
// completes.
func (mc *MirrorClient) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	mc.log.Info().
		Str("username", r.User.Username).
		Str("channel_one", mc.cfg.ChannelOneID).
		Str("channel_two", mc.cfg.ChannelTwoID).
		Msg("Bot is ready, syncing messages between channels")
}

// handleMessageCreate relays a posted message to its mirrored
// destination. Messages from automated identities never reach the
// dispatcher: the bot's own webhook output comes back through this
// handler and must not be mirrored again.
func (mc *MirrorClient) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg := m.Message
	if reason, skip := automatedReason(msg); skip {
		mc.log.Debug().
			Str("channel_id", msg.ChannelID).
			Str("reason", reason).
			Msg("Skipping message (echo prevention)")
		return
	}

	ctx := context.Background()
	dest, ok, err := mc.dispatch.Route(ctx, msg.ChannelID)
	if err != nil {
		mc.log.Warn().Err(err).Str("channel_id", msg.ChannelID).Msg("Failed to route message")
		return
	}
	if !ok {
		return
	}
	// Best-effort; Relay logs delivery failures itself.
	_ = mc.dispatch.Relay(ctx, msg, dest)
}

// handleThreadCreate mirrors a newly observed thread under the partner
// channel.
func (mc *MirrorClient) handleThreadCreate(_ *discordgo.Session, t *discordgo.ThreadCreate) {
	mc.mirrorThread(context.Background(), t.Channel)
}

// automatedReason reports whether the message was authored by an
// automated identity, and why. Webhook-origin messages include the bot's
// own mirrored output.
func automatedReason(msg *discordgo.Message) (string, bool) {
	switch {
	case msg.Author == nil:
		return "no author", true
	case msg.WebhookID != "":
		return "webhook origin", true
	case msg.Author.Bot:
		return "bot author", true
	}
	return "", false
}

// isAutomated is the boolean form of automatedReason.
func isAutomated(msg *discordgo.Message) bool {
	_, skip := automatedReason(msg)
	return skip
}
