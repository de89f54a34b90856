package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter keeps one spinner line updated in place while a long call,
// such as a render, runs without per-item progress.
type StatusWriter struct {
	w        io.Writer
	interval time.Duration

	mu      sync.Mutex
	message string
	started time.Time
	done    chan struct{}
	stopped bool
}

// NewStatusWriter starts a background spinner on w.
func NewStatusWriter(w io.Writer, message string) *StatusWriter {
	sw := &StatusWriter{
		w:        w,
		interval: 100 * time.Millisecond,
		message:  message,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update replaces the message. The elapsed time keeps counting from the
// start of the writer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.mu.Unlock()
}

// Finish stops the spinner and leaves line in its place.
func (sw *StatusWriter) Finish(line string) {
	if !sw.stop() {
		return
	}
	fmt.Fprintf(sw.w, "\r\033[K%s (%s)\n", line, formatElapsed(time.Since(sw.started)))
}

// Stop clears the status line.
func (sw *StatusWriter) Stop() {
	if sw.stop() {
		fmt.Fprint(sw.w, "\r\033[K")
	}
}

func (sw *StatusWriter) stop() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return false
	}
	sw.stopped = true
	close(sw.done)
	return true
}

func (sw *StatusWriter) loop() {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for tick := 0; ; tick++ {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			if !sw.stopped {
				fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", spinnerFrames[tick%len(spinnerFrames)], sw.message, formatElapsed(time.Since(sw.started)))
			}
			sw.mu.Unlock()
		}
	}
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
