// Package app runs the animate-then-sleep loop that cycles the tree
// through its patterns.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-arborluminis/internal/patterns"
)

const defaultInterval = 500 * time.Millisecond

// Loop owns the frame timing. Everything runs on the caller's
// goroutine; the tree is never touched concurrently.
type Loop struct {
	Tree     patterns.Tree
	Patterns []patterns.Pattern
	// FramesPerPattern is how many frames each pattern runs before the
	// loop advances to the next one, wrapping around.
	FramesPerPattern int
	// Interval is the time between frames. 0 means half a second, the
	// stock tree cadence.
	Interval time.Duration
	Log      zerolog.Logger
}

// Run renders frames until ctx is cancelled, which returns nil. A
// pattern error stops the loop and is returned as-is.
func (l *Loop) Run(ctx context.Context) error {
	if len(l.Patterns) == 0 {
		return errors.New("app: no patterns to run")
	}
	interval := l.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	frames := l.FramesPerPattern
	if frames <= 0 {
		frames = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cur, n := 0, 0
	l.Log.Info().Str("pattern", l.Patterns[cur].Name()).Msg("starting")
	for {
		// A cancellation during the previous frame wins over a tick
		// that is already pending.
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Patterns[cur].Frame(l.Tree, n); err != nil {
				return err
			}
			n++
			if n >= frames {
				n = 0
				cur = (cur + 1) % len(l.Patterns)
				l.Log.Info().Str("pattern", l.Patterns[cur].Name()).Msg("pattern change")
			}
		}
	}
}
