// Package engine runs the capture loop: take a screenshot every interval,
// repair blackout gaps, roll over at midnight, and hand sealed days to the
// movie maker.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/runnerr0/ompd/internal/backfill"
	"github.com/runnerr0/ompd/internal/capture"
	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/movie"
	"github.com/runnerr0/ompd/internal/shotdir"
)

// Engine owns the long-running capture loop and its background tasks.
type Engine struct {
	cfg      *config.Config
	mgr      *shotdir.Manager
	capturer *capture.Capturer
	maker    *movie.Maker

	// taskErrs collects failures from supervised background tasks so the
	// loop can log them without blocking on the tasks themselves.
	taskErrs chan taskError
}

type taskError struct {
	name string
	err  error
}

// New wires an Engine from already-constructed parts.
func New(cfg *config.Config, mgr *shotdir.Manager, capturer *capture.Capturer, maker *movie.Maker) *Engine {
	return &Engine{
		cfg:      cfg,
		mgr:      mgr,
		capturer: capturer,
		maker:    maker,
		taskErrs: make(chan taskError, 8),
	}
}

// Run captures frames until ctx is cancelled. It returns a non-nil error
// only for failures the loop cannot recover from, such as being unable to
// create or write the day's shot directory.
func (e *Engine) Run(ctx context.Context) error {
	if e.cfg.BackfillOnStartup {
		today := shotdir.DateOf(time.Now())
		bf := backfill.New(e.cfg, e.mgr, e.maker, today)
		e.supervise("backfill", bf.Run)
	}

	currentDir, err := e.mgr.EnsureDir(shotdir.DateOf(time.Now()))
	if err != nil {
		return fmt.Errorf("create today's shot dir: %w", err)
	}
	e.capturer.DiscoverCurrentFrame(currentDir)
	slog.Info("capture loop starting",
		"dir", currentDir, "frame", e.capturer.CurrentFrame(), "interval", e.cfg.Interval())

	prevTime := time.Now()
	for {
		img, err := e.capturer.CaptureScreen()
		currTime := time.Now()
		if err != nil {
			// Screens go away: lid closed, session locked, X gone. Keep
			// ticking with prevTime untouched so the gap keeps growing and
			// the next successful capture repairs it with filler frames.
			slog.Info("screen capture failed, will retry", "error", err)
			if stop := e.sleep(ctx); stop {
				return nil
			}
			continue
		}

		if currTime.Sub(prevTime) > e.cfg.MaxSleep() {
			change, err := e.capturer.DealWithChange(currentDir, prevTime, currTime)
			if err != nil {
				// Retry with the gap intact on the next tick.
				slog.Error("failed to handle time gap", "error", err)
				if stop := e.sleep(ctx); stop {
					return nil
				}
				continue
			}
			if change == capture.NewDay {
				e.rolloverMovie(currentDir)
				currentDir, err = e.mgr.EnsureDir(shotdir.DateOf(currTime))
				if err != nil {
					return fmt.Errorf("create shot dir for new day: %w", err)
				}
				e.capturer.SetCurrentFrame(0)
				slog.Info("rolled over to new day", "dir", currentDir)
			}
		}

		if err := e.capturer.Store(img, currentDir); err != nil {
			return fmt.Errorf("store frame: %w", err)
		}
		prevTime = currTime

		e.drainTaskErrs()
		if stop := e.sleep(ctx); stop {
			return nil
		}
	}
}

// rolloverMovie encodes the sealed day in the background.
func (e *Engine) rolloverMovie(dir string) {
	e.supervise("moviemaker", func() error {
		return e.maker.MakeMovieFrom(dir)
	})
}

// supervise runs fn on its own goroutine and reports the outcome on
// taskErrs. A panicking task is caught and reported instead of taking the
// capture loop down with it.
func (e *Engine) supervise(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.taskErrs <- taskError{name, fmt.Errorf("panic: %v", r)}
			}
		}()
		if err := fn(); err != nil {
			e.taskErrs <- taskError{name, err}
			return
		}
		slog.Debug("background task finished", "task", name)
	}()
}

func (e *Engine) drainTaskErrs() {
	for {
		select {
		case te := <-e.taskErrs:
			slog.Error("background task failed", "task", te.name, "error", te.err)
		default:
			return
		}
	}
}

// sleep waits one capture interval, reporting true when ctx was cancelled.
func (e *Engine) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		slog.Info("shutting down", "reason", ctx.Err())
		return true
	case <-time.After(e.cfg.Interval()):
		return false
	}
}
