// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// sessionAPI is the production threadAPI backed by the Discord session.
type sessionAPI struct {
	session *discordgo.Session
}

func (a *sessionAPI) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return a.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (a *sessionAPI) ThreadJoin(ctx context.Context, threadID string) error {
	return a.session.ThreadJoin(threadID, discordgo.WithContext(ctx))
}

func (a *sessionAPI) ThreadStart(ctx context.Context, channelID string, start *discordgo.ThreadStart) (*discordgo.Channel, error) {
	return a.session.ThreadStartComplex(channelID, start, discordgo.WithContext(ctx))
}

func (a *sessionAPI) FirstMessage(ctx context.Context, threadID string) (*discordgo.Message, error) {
	msgs, err := a.session.ChannelMessages(threadID, 1, "", "0", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// sessionWebhookSender is the production webhookSender backed by the
// Discord session.
type sessionWebhookSender struct {
	session *discordgo.Session
}

func (s *sessionWebhookSender) SendWebhook(ctx context.Context, dest Destination, payload *RelayPayload) error {
	// Webhooks cannot attach remote files by URL, but Discord renders a
	// bare URL as the attachment preview, so append them to the content.
	content := payload.Content
	if len(payload.AttachmentURLs) > 0 {
		urls := strings.Join(payload.AttachmentURLs, "\n")
		if content == "" {
			content = urls
		} else {
			content += "\n" + urls
		}
	}

	params := &discordgo.WebhookParams{
		Content:   content,
		Username:  payload.Username,
		AvatarURL: payload.AvatarURL,
		Embeds:    payload.Embeds,
		// An empty parse list suppresses every mention class on
		// delivery, independent of content sanitization.
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	var err error
	if dest.ThreadID != "" {
		_, err = s.session.WebhookThreadExecute(dest.WebhookID, dest.WebhookToken, false, dest.ThreadID, params, discordgo.WithContext(ctx))
	} else {
		_, err = s.session.WebhookExecute(dest.WebhookID, dest.WebhookToken, false, params, discordgo.WithContext(ctx))
	}
	return err
}
