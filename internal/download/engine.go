package download

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/handiism/rom-browser/internal/httpx"
	"github.com/handiism/rom-browser/internal/model"
)

// State is the phase of a download attempt.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateFailed
)

// String returns the state's display name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Strategy selects how a download is performed.
type Strategy int

const (
	// StrategyStream downloads with the built-in HTTP streaming loop.
	StrategyStream Strategy = iota

	// StrategyExternal delegates to the external resumable downloader
	// (aria2c), falling back to StrategyStream when it is not installed.
	StrategyExternal
)

// Progress is a telemetry snapshot of the current download attempt.
type Progress struct {
	State      State
	Name       string
	Dest       string
	Downloaded int64

	// Total is the declared size in bytes, or -1 when unknown.
	Total int64

	Elapsed time.Duration

	// Speed is the average bytes per second since the attempt started.
	Speed float64

	// Output is the last line of external downloader output, empty for
	// the streaming strategy.
	Output string

	// Err is the failure message when State is StateFailed.
	Err string
}

// Percent returns completion in [0, 1], or 0 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Downloaded) / float64(p.Total)
}

// ETA estimates the remaining time, or 0 when the total or speed is
// unknown.
func (p Progress) ETA() time.Duration {
	if p.Total <= 0 || p.Speed <= 0 || p.Downloaded >= p.Total {
		return 0
	}
	remaining := float64(p.Total-p.Downloaded) / p.Speed
	return time.Duration(remaining * float64(time.Second))
}

// chunkSize is the copy buffer for the streaming strategy; telemetry
// updates once per chunk.
const chunkSize = 64 * 1024

// Engine performs one download at a time and exposes polled telemetry.
//
// The browse session invokes Download from a background command and the UI
// polls Snapshot on a tick, mirroring how scrape progress is reported.
// Partial files are never cleaned up on failure; whatever was written
// stays on disk so an external resumable tool can pick it up.
type Engine struct {
	client       *httpx.Client
	externalTool string

	mu  sync.Mutex
	cur Progress
}

// NewEngine creates an Engine using the given HTTP client.
func NewEngine(client *httpx.Client) *Engine {
	return &Engine{client: client, externalTool: "aria2c"}
}

// ExternalAvailable reports whether the external resumable downloader is
// installed.
func (e *Engine) ExternalAvailable() bool {
	return lookPath(e.externalTool) == nil
}

// Snapshot returns the current telemetry. Safe to call from the UI
// goroutine while a download runs.
func (e *Engine) Snapshot() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cur
}

// Download fetches the record into destDir and blocks until the attempt
// ends, returning the final telemetry. The destination directory is
// created if missing and the filename is derived with
// model.SanitizeFilename.
//
// StrategyExternal silently falls back to the streaming strategy when the
// external tool is not installed.
func (e *Engine) Download(ctx context.Context, rec model.Record, destDir string, strategy Strategy) Progress {
	start := time.Now()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return e.fail(rec, destDir, start, err)
	}

	dest := filepath.Join(destDir, model.SanitizeFilename(rec.URL, rec.Name))
	e.set(Progress{State: StateConnecting, Name: rec.Name, Dest: dest, Total: -1})

	if strategy == StrategyExternal && e.ExternalAvailable() {
		return e.runExternal(ctx, rec, dest, start)
	}
	return e.stream(ctx, rec, dest, start)
}

// stream is the built-in strategy: one GET request copied to disk in fixed
// chunks, telemetry updated after every chunk.
func (e *Engine) stream(ctx context.Context, rec model.Record, dest string, start time.Time) Progress {
	body, total, err := e.client.Open(ctx, rec.URL)
	if err != nil {
		return e.fail(rec, dest, start, err)
	}
	defer body.Close()

	file, err := os.Create(dest)
	if err != nil {
		return e.fail(rec, dest, start, err)
	}

	e.set(Progress{State: StateStreaming, Name: rec.Name, Dest: dest, Total: total})

	writer := &httpx.ProgressWriter{
		Writer: file,
		OnWrite: func(written int64) {
			e.update(func(p *Progress) {
				p.Downloaded = written
				p.Elapsed = time.Since(start)
				if p.Elapsed > 0 {
					p.Speed = float64(written) / p.Elapsed.Seconds()
				}
			})
		},
	}

	_, copyErr := io.CopyBuffer(writer, body, make([]byte, chunkSize))
	closeErr := file.Close()

	if copyErr != nil {
		// The partial file stays on disk.
		return e.finish(StateFailed, start, copyErr)
	}
	if closeErr != nil {
		return e.finish(StateFailed, start, closeErr)
	}
	return e.finish(StateCompleted, start, nil)
}

func (e *Engine) set(p Progress) {
	e.mu.Lock()
	e.cur = p
	e.mu.Unlock()
}

func (e *Engine) update(fn func(*Progress)) {
	e.mu.Lock()
	fn(&e.cur)
	e.mu.Unlock()
}

func (e *Engine) fail(rec model.Record, dest string, start time.Time, err error) Progress {
	e.set(Progress{
		State:   StateFailed,
		Name:    rec.Name,
		Dest:    dest,
		Total:   -1,
		Elapsed: time.Since(start),
		Err:     err.Error(),
	})
	return e.Snapshot()
}

// finish stamps the terminal state onto the current telemetry.
func (e *Engine) finish(state State, start time.Time, err error) Progress {
	e.update(func(p *Progress) {
		p.State = state
		p.Elapsed = time.Since(start)
		if p.Elapsed > 0 {
			p.Speed = float64(p.Downloaded) / p.Elapsed.Seconds()
		}
		if err != nil {
			p.Err = err.Error()
		}
	})
	return e.Snapshot()
}
