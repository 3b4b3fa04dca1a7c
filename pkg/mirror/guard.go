// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Timing for the creation ledger. A thread-created notification arriving
// within suppressionWindow of our own create call for the same name and
// channel is treated as an echo. Entries are kept for ledgerRetention and
// purged by a sweep every sweepInterval.
const (
	suppressionWindow = 5 * time.Second
	ledgerRetention   = 10 * time.Second
	sweepInterval     = 5 * time.Second
)

// ledgerKey identifies a thread creation the bot initiated itself.
type ledgerKey struct {
	name      string
	channelID string
}

// RaceGuard prevents the bot from mirroring its own output. It owns two
// pieces of ephemeral state with different timing characteristics:
//
//   - processing markers suppress overlapping mirror attempts for the
//     same thread within this process (near-instantaneous races);
//   - the creation ledger suppresses the platform's own thread-created
//     notification for threads the bot just created (a round trip that
//     can take seconds).
//
// Both creation notifications are indistinguishable in shape from
// user-initiated ones, so without this guard the bot double-mirrors or
// mirrors forever.
type RaceGuard struct {
	log   zerolog.Logger
	clock func() time.Time

	mu         sync.Mutex
	processing map[string]struct{}
	ledger     map[ledgerKey]time.Time

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewRaceGuard creates a guard. Call Start to run the periodic ledger
// sweep and Stop on shutdown.
func NewRaceGuard(log zerolog.Logger) *RaceGuard {
	return &RaceGuard{
		log:        log.With().Str("component", "race_guard").Logger(),
		clock:      time.Now,
		processing: make(map[string]struct{}),
		ledger:     make(map[ledgerKey]time.Time),
		stopChan:   make(chan struct{}),
	}
}

// MarkCreating records that the bot is about to create a thread with the
// given name under the given channel. Must be called before the create
// request is issued, otherwise the platform's notification can win the
// race and be mirrored as if a user had opened the thread.
func (g *RaceGuard) MarkCreating(name, channelID string) {
	g.mu.Lock()
	g.ledger[ledgerKey{name: name, channelID: channelID}] = g.clock()
	g.mu.Unlock()
	g.log.Debug().Str("thread_name", name).Str("channel_id", channelID).Msg("Marked own thread creation")
}

// IsSuppressed reports whether a thread-created notification for this
// name and channel is an echo of the bot's own create call.
func (g *RaceGuard) IsSuppressed(name, channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	at, ok := g.ledger[ledgerKey{name: name, channelID: channelID}]
	if !ok {
		return false
	}
	return g.clock().Sub(at) < suppressionWindow
}

// BeginProcessing marks a thread as currently being mirrored. Returns
// false if the thread is already marked; the check and the set happen
// under one lock so concurrent gateway events cannot both acquire it.
func (g *RaceGuard) BeginProcessing(threadID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.processing[threadID]; ok {
		return false
	}
	g.processing[threadID] = struct{}{}
	return true
}

// IsProcessing reports whether a mirror attempt for the thread is in
// flight.
func (g *RaceGuard) IsProcessing(threadID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.processing[threadID]
	return ok
}

// EndProcessing releases the processing marker. Callers must ensure this
// runs on every exit path of a mirror attempt.
func (g *RaceGuard) EndProcessing(threadID string) {
	g.mu.Lock()
	delete(g.processing, threadID)
	g.mu.Unlock()
}

// Sweep drops ledger entries older than the retention window.
func (g *RaceGuard) Sweep(now time.Time) {
	g.mu.Lock()
	removed := 0
	for key, at := range g.ledger {
		if now.Sub(at) > ledgerRetention {
			delete(g.ledger, key)
			removed++
		}
	}
	g.mu.Unlock()
	if removed > 0 {
		g.log.Debug().Int("removed", removed).Msg("Swept creation ledger")
	}
}

// Start launches the periodic ledger sweep.
func (g *RaceGuard) Start() {
	go g.sweepLoop()
}

// Stop terminates the sweep loop. Safe to call more than once.
func (g *RaceGuard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopChan)
	})
}

func (g *RaceGuard) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.Sweep(g.clock())
		}
	}
}
