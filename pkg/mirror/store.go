// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ThreadPairing is the durable record linking a thread to its mirror.
// Records are immutable once written and are never deleted.
type ThreadPairing struct {
	ThreadA   string    `json:"thread_a"`
	ThreadB   string    `json:"thread_b"`
	CreatedAt time.Time `json:"created_at"`
}

// PairingStore owns the thread pairing records: one JSON file per pairing
// under a data directory, plus a bidirectional in-memory index for O(1)
// lookups. The index is only updated after the durable write succeeds.
type PairingStore struct {
	dir string
	log zerolog.Logger

	mu    sync.RWMutex
	index map[string]string
}

// NewPairingStore creates a store over the given directory. Call Load
// before first use.
func NewPairingStore(dir string, log zerolog.Logger) *PairingStore {
	return &PairingStore{
		dir:   dir,
		log:   log.With().Str("component", "pairing_store").Logger(),
		index: make(map[string]string),
	}
}

// Load scans every pairing record in the data directory and rebuilds the
// bidirectional index. A missing directory is created and yields zero
// pairings; it is not an error. Unreadable records are skipped with a
// warning so one corrupt file cannot take the bot down.
func (ps *PairingStore) Load() error {
	if err := os.MkdirAll(ps.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", ps.dir, err)
	}

	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		return fmt.Errorf("failed to read data directory %s: %w", ps.dir, err)
	}

	index := make(map[string]string, len(entries)*2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(ps.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			ps.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable pairing record")
			continue
		}
		var pairing ThreadPairing
		if err := json.Unmarshal(data, &pairing); err != nil {
			ps.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping malformed pairing record")
			continue
		}
		if pairing.ThreadA == "" || pairing.ThreadB == "" {
			ps.log.Warn().Str("file", entry.Name()).Msg("Skipping incomplete pairing record")
			continue
		}
		index[pairing.ThreadA] = pairing.ThreadB
		index[pairing.ThreadB] = pairing.ThreadA
	}

	ps.mu.Lock()
	ps.index = index
	ps.mu.Unlock()

	ps.log.Info().Int("pairings", len(index)/2).Str("dir", ps.dir).Msg("Loaded thread pairings")
	return nil
}

// Lookup returns the mirror partner of the given thread ID, in either
// direction.
func (ps *PairingStore) Lookup(threadID string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	partner, ok := ps.index[threadID]
	return partner, ok
}

// Save persists a new symmetric pairing and inserts both directions into
// the index. If the durable write fails the index is left untouched.
func (ps *PairingStore) Save(threadA, threadB string) error {
	pairing := ThreadPairing{
		ThreadA:   threadA,
		ThreadB:   threadB,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(&pairing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pairing: %w", err)
	}
	path := filepath.Join(ps.dir, threadA+"-"+threadB+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write pairing record: %w", err)
	}

	ps.mu.Lock()
	ps.index[threadA] = threadB
	ps.index[threadB] = threadA
	ps.mu.Unlock()

	ps.log.Debug().Str("thread_a", threadA).Str("thread_b", threadB).Msg("Saved thread pairing")
	return nil
}

// Count returns the number of persisted pairings.
func (ps *PairingStore) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.index) / 2
}
