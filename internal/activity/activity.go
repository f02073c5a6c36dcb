package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
)

// DefaultMaxEntries is used when a backend is configured with a non-positive cap.
const DefaultMaxEntries = 3

// Entry is one recorded request.
type Entry struct {
	Method string    `json:"method"`
	Route  string    `json:"route"`
	Status int       `json:"status"`
	At     time.Time `json:"at"`
}

// Recorder stores and returns per-client request history.
type Recorder interface {
	// Record appends e to the history of client, evicting the oldest entries past the cap.
	Record(ctx context.Context, client string, e Entry) error
	// Recent returns up to n entries for client, newest first. n <= 0 means the backend cap.
	Recent(ctx context.Context, client string, n int) ([]Entry, error)
	Close() error
}

// New builds the [Recorder] selected by cfg.Activity.Backend.
//
// Returns a nil Recorder for the "none" backend.
func New(cfg *shared.Config, logger *log.Logger) (Recorder, error) {
	maxEntries := cfg.Activity.MaxEntries

	switch cfg.Activity.Backend {
	case "none":
		logger.Debug("activity recording disabled")
		return nil, nil
	case "", "memory":
		logger.Debug("recording activity in memory", "max_entries", maxEntries)
		return NewMemory(maxEntries), nil
	case "sqlite":
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Debug("recording activity in sqlite", "path", cfg.Database.Path, "max_entries", maxEntries)
		return NewSQLite(db, maxEntries), nil
	case "redis":
		r, err := DialRedis(cfg.Redis, maxEntries)
		if err != nil {
			return nil, err
		}
		logger.Debug("recording activity in redis", "addr", cfg.Redis.Addr, "max_entries", maxEntries)
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownBackend, cfg.Activity.Backend)
	}
}

func capOrDefault(max int) int {
	if max <= 0 {
		return DefaultMaxEntries
	}
	return max
}

func limit(n, max int) int {
	if n <= 0 || n > max {
		return max
	}
	return n
}

// Memory is an in-process [Recorder].
type Memory struct {
	mu      sync.Mutex
	max     int
	entries map[string][]Entry
}

// NewMemory creates a [Memory] recorder keeping max entries per client.
func NewMemory(max int) *Memory {
	return &Memory{max: capOrDefault(max), entries: make(map[string][]Entry)}
}

func (m *Memory) Record(_ context.Context, client string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]Entry{e}, m.entries[client]...)
	if len(list) > m.max {
		list = list[:m.max]
	}
	m.entries[client] = list
	return nil
}

func (m *Memory) Recent(_ context.Context, client string, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[client]
	n = limit(n, m.max)
	if n > len(list) {
		n = len(list)
	}

	out := make([]Entry, n)
	copy(out, list[:n])
	return out, nil
}

func (m *Memory) Close() error { return nil }
