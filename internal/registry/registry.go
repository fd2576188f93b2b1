// Package registry maps opaque identifiers to finished artifacts for a
// bounded lifetime. Entries are immutable once inserted; they disappear when
// their age exceeds the TTL or when the backing file is found missing.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"stillcast/internal/metrics"
)

// Entry is one registered artifact.
type Entry struct {
	ID        string
	FilePath  string
	CreatedAt time.Time
}

// Registry is a thread-safe in-memory map of download identifiers to artifacts.
// It owns the backing files of its live entries and deletes them on eviction.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	logger  *slog.Logger
}

// New creates a Registry whose entries expire after ttl.
func New(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		ttl:     ttl,
		logger:  logger,
	}
}

// TTL returns the configured entry lifetime.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Register stores filePath under a fresh identifier and returns it.
// Ownership of the backing file transfers to the registry.
func (r *Registry) Register(filePath string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newID()
	for {
		if _, exists := r.entries[id]; !exists {
			break
		}
		id = newID()
	}

	r.entries[id] = Entry{
		ID:        id,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}
	metrics.RegistryEntries.Set(float64(len(r.entries)))

	r.logger.Info("artifact registered", "id", id, "path", filePath)
	return id
}

// Lookup resolves id to the artifact path. Entries past their TTL are
// evicted even before the janitor's next pass, and the backing file is
// verified to still exist; a vanished file evicts the entry and reports a
// miss.
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	r.mu.Unlock()

	if !ok {
		return "", false
	}

	if time.Since(entry.CreatedAt) > r.ttl {
		r.evict(id)
		if err := os.Remove(entry.FilePath); err != nil && !os.IsNotExist(err) {
			r.logger.Error("failed to delete expired artifact", "id", id, "path", entry.FilePath, "error", err)
		}
		return "", false
	}

	if _, err := os.Stat(entry.FilePath); err != nil {
		r.evict(id)
		r.logger.Warn("artifact file missing, entry evicted", "id", id, "path", entry.FilePath)
		return "", false
	}

	return entry.FilePath, true
}

// Sweep removes every entry whose age relative to now exceeds the TTL,
// deleting backing files. Returns the number of evicted entries.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []Entry
	for id, entry := range r.entries {
		if now.Sub(entry.CreatedAt) > r.ttl {
			expired = append(expired, entry)
			delete(r.entries, id)
		}
	}
	metrics.RegistryEntries.Set(float64(len(r.entries)))
	r.mu.Unlock()

	for _, entry := range expired {
		if err := os.Remove(entry.FilePath); err != nil && !os.IsNotExist(err) {
			r.logger.Error("failed to delete expired artifact", "id", entry.ID, "path", entry.FilePath, "error", err)
		}
		metrics.RegistryEvictions.Inc()
	}

	return len(expired)
}

// Run executes the janitor loop: a periodic sweep for the lifetime of ctx.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("registry janitor started", "interval", interval, "ttl", r.ttl)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("registry janitor stopped")
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Info("expired artifacts swept", "count", n)
			}
		}
	}
}

func (r *Registry) evict(id string) {
	r.mu.Lock()
	if _, ok := r.entries[id]; ok {
		delete(r.entries, id)
		metrics.RegistryEntries.Set(float64(len(r.entries)))
		metrics.RegistryEvictions.Inc()
	}
	r.mu.Unlock()
}

func newID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString())
}
