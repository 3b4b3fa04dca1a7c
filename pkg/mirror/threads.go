// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// mirrorThread reacts to a thread-created notification by creating a
// linked mirror thread under the partner channel.
//
// The sequence is: guard checks, join source + best-effort first message
// fetch, resolve partner channel, mark the creation ledger, create and
// join the mirror, persist the pairing (the durability commit point), and
// finally relay the source thread's first message if one was captured.
// Any failure after the guard checks aborts just this attempt; the
// processing markers are released on every exit path.
func (mc *MirrorClient) mirrorThread(ctx context.Context, th *discordgo.Channel) {
	log := mc.log.With().
		Str("thread_id", th.ID).
		Str("thread_name", th.Name).
		Str("parent_id", th.ParentID).
		Logger()

	partnerChannelID, ok := mc.cfg.PartnerChannel(th.ParentID)
	if !ok {
		log.Debug().Msg("Thread parent is not a synced channel, ignoring")
		return
	}
	if _, paired := mc.store.Lookup(th.ID); paired {
		log.Debug().Msg("Thread already paired, ignoring")
		return
	}
	if mc.guard.IsSuppressed(th.Name, th.ParentID) {
		log.Debug().Msg("Thread creation is an echo of our own mirror, ignoring")
		return
	}
	if !mc.guard.BeginProcessing(th.ID) {
		log.Debug().Msg("Thread is already being mirrored, ignoring")
		return
	}
	defer mc.guard.EndProcessing(th.ID)

	// Join so the bot receives future messages posted in the thread.
	if err := mc.api.ThreadJoin(ctx, th.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to join source thread")
	}

	// Best-effort: a thread may not have a starter message yet.
	firstMsg, err := mc.api.FirstMessage(ctx, th.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch first thread message")
		firstMsg = nil
	}

	partner, err := mc.api.Channel(ctx, partnerChannelID)
	if err != nil {
		log.Error().Err(err).Str("partner_channel_id", partnerChannelID).Msg("Failed to resolve partner channel")
		return
	}
	if partner.Type != discordgo.ChannelTypeGuildText {
		log.Error().
			Str("partner_channel_id", partner.ID).
			Int("channel_type", int(partner.Type)).
			Msg("Partner channel is not a text channel")
		return
	}

	// Mark before issuing the create request: the platform's own
	// thread-created notification can arrive before the call returns.
	mc.guard.MarkCreating(th.Name, partner.ID)

	start := &discordgo.ThreadStart{
		Name: th.Name,
		Type: th.Type,
	}
	if th.ThreadMetadata != nil {
		start.AutoArchiveDuration = th.ThreadMetadata.AutoArchiveDuration
	}
	mirror, err := mc.api.ThreadStart(ctx, partner.ID, start)
	if err != nil {
		log.Error().Err(err).Str("partner_channel_id", partner.ID).Msg("Failed to create mirror thread")
		return
	}
	log = log.With().Str("mirror_thread_id", mirror.ID).Logger()

	mc.guard.BeginProcessing(mirror.ID)
	defer mc.guard.EndProcessing(mirror.ID)

	if err := mc.api.ThreadJoin(ctx, mirror.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to join mirror thread")
	}

	// Durability commit point: once saved, the pairing is authoritative
	// for all future relay routing.
	if err := mc.store.Save(th.ID, mirror.ID); err != nil {
		log.Error().Err(err).Msg("Failed to persist thread pairing")
		return
	}
	log.Info().Msg("Mirrored thread")

	if firstMsg == nil || isAutomated(firstMsg) {
		return
	}
	creds, _ := mc.cfg.WebhookFor(partner.ID)
	dest := Destination{WebhookID: creds.ID, WebhookToken: creds.Token, ThreadID: mirror.ID}
	if err := mc.dispatch.Relay(ctx, firstMsg, dest); err != nil {
		// The pairing stands; only the initial copy is lost.
		log.Warn().Err(err).Msg("Failed to relay first thread message")
	}
}
