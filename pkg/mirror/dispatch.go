// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/azisaba/discord-chat-sync/pkg/mirror/discordfmt"
)

// Destination is a resolved relay target: a webhook, optionally qualified
// with a thread to post into.
type Destination struct {
	WebhookID    string
	WebhookToken string
	ThreadID     string
}

// RelayPayload is the platform-independent shape of a relayed message.
// An empty Content means the content field is omitted at delivery.
type RelayPayload struct {
	Username       string
	AvatarURL      string
	Content        string
	Embeds         []*discordgo.MessageEmbed
	AttachmentURLs []string
}

// webhookSender delivers a relay payload to a webhook destination. The
// production implementation wraps the Discord session; tests inject a
// recorder.
type webhookSender interface {
	SendWebhook(ctx context.Context, dest Destination, payload *RelayPayload) error
}

// channelResolver fetches channel metadata by ID.
type channelResolver interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
}

// Dispatcher routes inbound messages to their mirrored destination and
// performs the best-effort webhook relay.
type Dispatcher struct {
	cfg      *Config
	store    *PairingStore
	resolver channelResolver
	sender   webhookSender
	log      zerolog.Logger
}

// NewDispatcher wires a dispatcher over the pairing store and the
// delivery collaborators.
func NewDispatcher(cfg *Config, store *PairingStore, resolver channelResolver, sender webhookSender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		sender:   sender,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Route resolves where a message from the given source channel or thread
// should be mirrored. A false result with a nil error means the message
// is not relay-eligible (foreign channel or unpaired thread); that is a
// normal outcome, not an error.
func (d *Dispatcher) Route(ctx context.Context, sourceID string) (Destination, bool, error) {
	if partner, ok := d.cfg.PartnerChannel(sourceID); ok {
		creds, _ := d.cfg.WebhookFor(partner)
		return Destination{WebhookID: creds.ID, WebhookToken: creds.Token}, true, nil
	}

	partnerThread, ok := d.store.Lookup(sourceID)
	if !ok {
		// Unpaired threads are not relay-eligible.
		return Destination{}, false, nil
	}

	ch, err := d.resolver.Channel(ctx, partnerThread)
	if err != nil {
		return Destination{}, false, fmt.Errorf("failed to resolve partner thread %s: %w", partnerThread, err)
	}
	creds, ok := d.cfg.WebhookFor(ch.ParentID)
	if !ok {
		d.log.Warn().
			Str("thread_id", partnerThread).
			Str("parent_id", ch.ParentID).
			Msg("Paired thread parent is not a synced channel")
		return Destination{}, false, nil
	}
	return Destination{WebhookID: creds.ID, WebhookToken: creds.Token, ThreadID: partnerThread}, true, nil
}

// Relay posts the message to the destination under the original author's
// identity. Content is sanitized and all mention notification is
// additionally suppressed at the delivery boundary. Delivery is
// best-effort: failures are logged and not retried.
func (d *Dispatcher) Relay(ctx context.Context, msg *discordgo.Message, dest Destination) error {
	payload := buildPayload(msg)
	if err := d.sender.SendWebhook(ctx, dest, payload); err != nil {
		d.log.Error().Err(err).
			Str("source_channel_id", msg.ChannelID).
			Str("webhook_id", dest.WebhookID).
			Str("target_thread_id", dest.ThreadID).
			Msg("Failed to deliver relayed message")
		return err
	}
	d.log.Info().
		Str("source_channel_id", msg.ChannelID).
		Str("target_thread_id", dest.ThreadID).
		Msg("Synced message")
	return nil
}

// buildPayload converts a gateway message into a relay payload, deriving
// the display identity and carrying embeds and attachment URLs through
// unchanged.
func buildPayload(msg *discordgo.Message) *RelayPayload {
	urls := make([]string, 0, len(msg.Attachments))
	for _, attachment := range msg.Attachments {
		urls = append(urls, attachment.URL)
	}
	return &RelayPayload{
		Username:       displayIdentity(msg),
		AvatarURL:      msg.Author.AvatarURL(""),
		Content:        discordfmt.Sanitize(msg.Content),
		Embeds:         msg.Embeds,
		AttachmentURLs: urls,
	}
}

// displayIdentity prefers the author's per-channel nickname over their
// global display name, and appends the platform username in parentheses
// so readers can tell identically-named users apart.
func displayIdentity(msg *discordgo.Message) string {
	name := msg.Author.Username
	if msg.Author.GlobalName != "" {
		name = msg.Author.GlobalName
	}
	if msg.Member != nil && msg.Member.Nick != "" {
		name = msg.Member.Nick
	}
	return fmt.Sprintf("%s (%s)", name, msg.Author.Username)
}
