// Copyright 2025-2026 Azisaba Network

// Package mirror implements a two-channel Discord conversation mirror.
// Messages posted in either of the two configured channels are re-posted
// under the original author's identity (via webhook) into the other, and
// threads opened under either channel are mirrored as newly created,
// linked threads under the other.
//
// # Core Types
//
// [MirrorClient] owns the gateway session and wires the engine together:
// it registers the event handlers and manages the Connect/Disconnect
// lifecycle.
//
// [PairingStore] owns the durable, bidirectional mapping between mirrored
// threads: one JSON record per pairing, full-scan loaded at startup into
// an in-memory index.
//
// [RaceGuard] owns the ephemeral suppression state: processing markers
// for in-flight mirror attempts and a time-window creation ledger that
// recognizes the platform's notification of the bot's own thread
// creations.
//
// [Dispatcher] routes an inbound message to its mirrored destination and
// performs the best-effort webhook relay.
//
// # Echo Prevention
//
// Mirroring produces platform events shaped exactly like user activity,
// so the engine layers several guards against relaying its own output:
// webhook-origin and bot-author message skips, processing markers for
// same-process overlap, and the creation ledger for the slower
// creation-to-notification round trip. Relayed messages additionally
// suppress all mention notification at the delivery boundary on top of
// content sanitization. These layers must not be simplified or removed.
//
// # Sub-packages
//
//   - discordfmt defuses mention syntax in relayed message content.
package mirror
