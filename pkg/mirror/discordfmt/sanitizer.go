// Copyright 2025-2026 Azisaba Network

// Package discordfmt sanitizes Discord message content for webhook
// re-posting. Mirrored messages must never re-trigger notifications or
// leak internal IDs, so mention syntax is defused before delivery.
package discordfmt

import "regexp"

// zws is a zero-width space. Inserting it after "@" or "#" keeps the
// visible text intact while preventing the platform from expanding the
// token into a notification.
const zws = "\u200b"

var (
	broadcastRe      = regexp.MustCompile(`@(everyone|here)`)
	userMentionRe    = regexp.MustCompile(`<@!?\d+>`)
	roleMentionRe    = regexp.MustCompile(`<@&\d+>`)
	channelMentionRe = regexp.MustCompile(`<#\d+>`)
)

// Sanitize returns text that is safe to re-post through a webhook.
// Broadcast mentions (@everyone, @here) are defused in place; user, role
// and channel mention tokens are replaced with generic defused literals,
// discarding the referenced IDs.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = broadcastRe.ReplaceAllString(text, "@"+zws+"$1")
	text = userMentionRe.ReplaceAllString(text, "@"+zws+"user")
	text = roleMentionRe.ReplaceAllString(text, "@"+zws+"role")
	text = channelMentionRe.ReplaceAllString(text, "#"+zws+"channel")
	return text
}
