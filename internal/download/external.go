package download

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/rom-browser/internal/model"
)

// lookPath is swappable so tests can simulate a missing external tool.
var lookPath = func(tool string) error {
	_, err := exec.LookPath(tool)
	return err
}

// pollInterval is how often the external strategy samples the destination
// file size for telemetry.
const pollInterval = 500 * time.Millisecond

// runExternal delegates the download to aria2c with resume enabled.
//
// aria2c owns the byte stream, so telemetry is derived indirectly: one
// goroutine tails the subprocess output (its last line is surfaced in the
// Progress), another polls the destination file size on an interval. The
// total size comes from a best-effort HEAD request since the engine never
// sees the response headers.
func (e *Engine) runExternal(ctx context.Context, rec model.Record, dest string, start time.Time) Progress {
	total := int64(-1)
	if size, err := e.client.FileSize(ctx, rec.URL); err == nil {
		total = size
	}
	e.set(Progress{State: StateStreaming, Name: rec.Name, Dest: dest, Total: total})

	cmd := exec.CommandContext(ctx, e.externalTool,
		"-c",
		"--auto-file-renaming=false",
		"--allow-overwrite=true",
		"-d", filepath.Dir(dest),
		"-o", filepath.Base(dest),
		rec.URL,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return e.fail(rec, dest, start, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return e.fail(rec, dest, start, err)
	}

	scanDone := make(chan struct{})
	pollDone := make(chan struct{})
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(scanDone)
		scanner := bufio.NewScanner(stdout)
		scanner.Split(scanProgressLines)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			e.update(func(p *Progress) { p.Output = line })
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pollDone:
				return nil
			case <-ticker.C:
				e.pollFileSize(dest, start)
			}
		}
	})

	// The pipe must be drained before Wait closes it.
	<-scanDone
	waitErr := cmd.Wait()
	close(pollDone)
	_ = g.Wait()

	e.pollFileSize(dest, start)
	if waitErr != nil {
		return e.finish(StateFailed, start, waitErr)
	}
	return e.finish(StateCompleted, start, nil)
}

// scanProgressLines splits on both newlines and carriage returns. aria2c
// redraws its progress line in place with "\r", so a plain line scanner
// would not yield a token until the download ends.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (e *Engine) pollFileSize(dest string, start time.Time) {
	info, err := os.Stat(dest)
	if err != nil {
		return
	}
	e.update(func(p *Progress) {
		p.Downloaded = info.Size()
		p.Elapsed = time.Since(start)
		if p.Elapsed > 0 {
			p.Speed = float64(p.Downloaded) / p.Elapsed.Seconds()
		}
	})
}
