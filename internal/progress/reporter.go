package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter shows that a request is outstanding. Its length is unknown, so
// there is no count, only a start and a stop.
type Reporter interface {
	Start(message string)
	Stop()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: w}
	}
	return &TerminalReporter{w: w}
}

// TerminalReporter animates a spinner until stopped.
type TerminalReporter struct {
	w    io.Writer
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func (r *TerminalReporter) Start(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Describe(message)
		return
	}

	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
	r.done = make(chan struct{})
	go spin(r.bar, r.done)
}

func spin(bar *progressbar.ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func (r *TerminalReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	close(r.done)
	_ = r.bar.Finish()
	r.bar = nil
}

// CIReporter prints one line per transition, suitable for logs.
type CIReporter struct {
	w       io.Writer
	mu      sync.Mutex
	started time.Time
	active  bool
}

func (r *CIReporter) Start(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return
	}
	r.active = true
	r.started = time.Now()
	fmt.Fprintf(r.w, "%s\n", message)
}

func (r *CIReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	fmt.Fprintf(r.w, "done in %s\n", time.Since(r.started).Round(time.Millisecond))
}
