package registry

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mp4data"), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New(time.Hour, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")

	id := reg.Register(path)
	if id == "" {
		t.Fatal("expected non-empty identifier")
	}

	got, ok := reg.Lookup(id)
	assert.True(t, ok)
	assert.Equal(t, path, got)
	assert.Equal(t, 1, reg.Len())
}

func TestLookupUnknown(t *testing.T) {
	reg := New(time.Hour, testLogger())

	_, ok := reg.Lookup("no-such-id")
	assert.False(t, ok)
}

func TestLookupEvictsWhenFileVanished(t *testing.T) {
	reg := New(time.Hour, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")

	id := reg.Register(path)
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove artifact: %v", err)
	}

	_, ok := reg.Lookup(id)
	assert.False(t, ok, "lookup must miss once the backing file is gone")
	assert.Equal(t, 0, reg.Len(), "vanished entry must be evicted lazily")
}

func TestSweepRemovesExpiredEntriesAndFiles(t *testing.T) {
	ttl := time.Hour
	reg := New(ttl, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")

	id := reg.Register(path)

	evicted := reg.Sweep(time.Now().Add(ttl + time.Minute))
	assert.Equal(t, 1, evicted)
	assert.NoFileExists(t, path, "sweep must delete the backing file")

	_, ok := reg.Lookup(id)
	assert.False(t, ok)
}

func TestSweepKeepsFreshEntries(t *testing.T) {
	reg := New(time.Hour, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")

	id := reg.Register(path)

	evicted := reg.Sweep(time.Now())
	assert.Equal(t, 0, evicted)
	assert.FileExists(t, path)

	_, ok := reg.Lookup(id)
	assert.True(t, ok)
}

func TestLookupEvictsExpiredEntryBeforeSweep(t *testing.T) {
	reg := New(time.Nanosecond, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")

	id := reg.Register(path)
	time.Sleep(time.Millisecond)

	_, ok := reg.Lookup(id)
	assert.False(t, ok, "expired entry must not resolve even before the janitor runs")
	assert.NoFileExists(t, path)
	assert.Equal(t, 0, reg.Len())
}

func TestRapidRegistrationYieldsDistinctIDs(t *testing.T) {
	reg := New(time.Hour, testLogger())
	dir := t.TempDir()

	first := reg.Register(writeArtifact(t, dir, "a.mp4"))
	second := reg.Register(writeArtifact(t, dir, "b.mp4"))

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, reg.Len())
}

func TestConcurrentRegister(t *testing.T) {
	reg := New(time.Hour, testLogger())
	path := writeArtifact(t, t.TempDir(), "shared.mp4")

	const n = 50
	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
		wg  sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := reg.Register(path)
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n, "every registration must produce a distinct identifier")
	assert.Equal(t, n, reg.Len())
}

func TestJanitorSweepsExpiredEntries(t *testing.T) {
	reg := New(10*time.Millisecond, testLogger())
	path := writeArtifact(t, t.TempDir(), "a.mp4")
	id := reg.Register(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.Run(ctx, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, ok := reg.Lookup(id)
		return !ok && !fileExists(path)
	}, 2*time.Second, 10*time.Millisecond, "janitor must evict the entry and delete the file")
}

func TestJanitorStopsOnContextCancel(t *testing.T) {
	reg := New(time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
