// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// newTestConfig returns a valid config over a temp data directory.
func newTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		ChannelOneID:  "chan-one",
		ChannelTwoID:  "chan-two",
		WebhookOneURL: "https://discord.com/api/webhooks/100/token-one",
		WebhookTwoURL: "https://discord.com/api/webhooks/200/token-two",
		BotToken:      "test-token",
		DataDir:       t.TempDir(),
	}
	if err := cfg.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	return cfg
}

// webhookCall records one delivery for test assertions.
type webhookCall struct {
	dest    Destination
	payload *RelayPayload
}

// fakeWebhookSender captures webhook deliveries.
type fakeWebhookSender struct {
	mu      sync.Mutex
	calls   []webhookCall
	failErr error
}

func (s *fakeWebhookSender) SendWebhook(_ context.Context, dest Destination, payload *RelayPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, webhookCall{dest: dest, payload: payload})
	return s.failErr
}

func (s *fakeWebhookSender) Calls() []webhookCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]webhookCall, len(s.calls))
	copy(cp, s.calls)
	return cp
}

// createdThread records one thread creation request.
type createdThread struct {
	channelID string
	start     *discordgo.ThreadStart
}

// fakeThreadAPI simulates the platform surface the engine talks to.
// Created threads are registered as resolvable channels so later routing
// against them works like the real platform.
type fakeThreadAPI struct {
	mu            sync.Mutex
	channels      map[string]*discordgo.Channel
	firstMessages map[string]*discordgo.Message
	joined        []string
	created       []createdThread

	channelErr  error
	joinErr     error
	createErr   error
	firstMsgErr error

	nextThreadID  int
	onThreadStart func(channelID string, start *discordgo.ThreadStart)
}

func newFakeThreadAPI() *fakeThreadAPI {
	return &fakeThreadAPI{
		channels:      make(map[string]*discordgo.Channel),
		firstMessages: make(map[string]*discordgo.Message),
	}
}

func (f *fakeThreadAPI) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return ch, nil
}

func (f *fakeThreadAPI) ThreadJoin(_ context.Context, threadID string) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, threadID)
	return nil
}

func (f *fakeThreadAPI) ThreadStart(_ context.Context, channelID string, start *discordgo.ThreadStart) (*discordgo.Channel, error) {
	if f.onThreadStart != nil {
		f.onThreadStart(channelID, start)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextThreadID++
	th := &discordgo.Channel{
		ID:       fmt.Sprintf("thread-%d", f.nextThreadID),
		Name:     start.Name,
		ParentID: channelID,
		Type:     start.Type,
	}
	f.created = append(f.created, createdThread{channelID: channelID, start: start})
	f.channels[th.ID] = th
	return th, nil
}

func (f *fakeThreadAPI) FirstMessage(_ context.Context, threadID string) (*discordgo.Message, error) {
	if f.firstMsgErr != nil {
		return nil, f.firstMsgErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstMessages[threadID], nil
}

func (f *fakeThreadAPI) Created() []createdThread {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]createdThread, len(f.created))
	copy(cp, f.created)
	return cp
}

func (f *fakeThreadAPI) Joined() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.joined))
	copy(cp, f.joined)
	return cp
}

// newTestClient builds a MirrorClient over fakes, with the partner
// channels pre-registered as text channels and an empty pairing store.
func newTestClient(t *testing.T) (*MirrorClient, *fakeThreadAPI, *fakeWebhookSender) {
	t.Helper()
	cfg := newTestConfig(t)
	log := zerolog.Nop()

	store := NewPairingStore(cfg.DataDir, log)
	if err := store.Load(); err != nil {
		t.Fatalf("store.Load: %v", err)
	}

	api := newFakeThreadAPI()
	api.channels[cfg.ChannelOneID] = &discordgo.Channel{ID: cfg.ChannelOneID, Type: discordgo.ChannelTypeGuildText}
	api.channels[cfg.ChannelTwoID] = &discordgo.Channel{ID: cfg.ChannelTwoID, Type: discordgo.ChannelTypeGuildText}
	sender := &fakeWebhookSender{}

	mc := &MirrorClient{
		cfg:      cfg,
		api:      api,
		store:    store,
		guard:    NewRaceGuard(log),
		dispatch: NewDispatcher(cfg, store, api, sender, log),
		log:      log,
	}
	return mc, api, sender
}

// humanMessage builds a plain user-authored message.
func humanMessage(channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author: &discordgo.User{
			ID:         "user-1",
			Username:   "alice",
			GlobalName: "Alice",
		},
	}
}

// sourceThread builds a public thread under the given parent channel.
func sourceThread(id, name, parentID string) *discordgo.Channel {
	return &discordgo.Channel{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Type:     discordgo.ChannelTypeGuildPublicThread,
		ThreadMetadata: &discordgo.ThreadMetadata{
			AutoArchiveDuration: 1440,
		},
	}
}
