package run

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flarebyte/jsforge/internal/stage"
)

const progressInterval = 500 * time.Millisecond

type progressReporter struct {
	enabled  bool
	interval time.Duration
	w        io.Writer

	mu        sync.Mutex
	stageName string
	successes int
	failures  int
}

func newProgressReporter(enabled bool, w io.Writer) *progressReporter {
	if !enabled || w == nil {
		return &progressReporter{enabled: false}
	}
	return &progressReporter{enabled: true, interval: progressInterval, w: w}
}

// runStage runs one stage, emitting a line before and after it and on every
// tick while it runs.
func (p *progressReporter) runStage(ctx context.Context, name string, in stage.Envelope, deps stage.Deps) (stage.Envelope, error) {
	if p == nil || !p.enabled {
		return stage.Run(ctx, name, in, deps)
	}

	p.setSnapshot(name, len(in.Successes), len(in.Failures))
	p.emit()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				p.emit()
			case <-done:
				return
			}
		}
	}()

	out, err := stage.Run(ctx, name, in, deps)
	close(done)
	<-stopped
	if err == nil {
		p.setSnapshot(name, len(out.Successes), len(out.Failures))
		p.emit()
	}
	return out, err
}

func (p *progressReporter) setSnapshot(stageName string, successes, failures int) {
	p.mu.Lock()
	p.stageName = stageName
	p.successes = successes
	p.failures = failures
	p.mu.Unlock()
}

func (p *progressReporter) emit() {
	if p == nil || !p.enabled || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "progress stage=%s successes=%d failures=%d\n", p.stageName, p.successes, p.failures)
}
