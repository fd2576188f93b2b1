package encoder

import "sync"

// tailWriter is an io.Writer that keeps only the most recent cap bytes.
// Older bytes are discarded as new ones arrive, so a chatty encoder cannot
// grow memory unboundedly while the useful diagnostics stay available.
type tailWriter struct {
	mu  sync.Mutex
	buf []byte
	cap int
}

func newTailWriter(capacity int) *tailWriter {
	return &tailWriter{cap: capacity}
}

func (t *tailWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(p) >= t.cap {
		t.buf = append(t.buf[:0], p[len(p)-t.cap:]...)
		return len(p), nil
	}

	t.buf = append(t.buf, p...)
	if overflow := len(t.buf) - t.cap; overflow > 0 {
		t.buf = t.buf[overflow:]
	}
	return len(p), nil
}

// Excerpt returns up to max bytes from the end of the captured stream.
func (t *tailWriter) Excerpt(max int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.buf) <= max {
		return string(t.buf)
	}
	return string(t.buf[len(t.buf)-max:])
}
