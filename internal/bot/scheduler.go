package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// Scheduler fires processing cycles on a fixed interval. A single-slot run
// guard makes cycles mutually exclusive: a trigger that lands while a cycle
// is running is dropped outright, there is no backlog.
type Scheduler struct {
	store     ports.Storage
	processor *Processor
	notifier  ports.Notifier
	guard     *RunGuard

	interval time.Duration
	cooldown time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewScheduler(store ports.Storage, processor *Processor, notifier ports.Notifier, interval, cooldown time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Scheduler{
		store:     store,
		processor: processor,
		notifier:  notifier,
		guard:     NewRunGuard(),
		interval:  interval,
		cooldown:  cooldown,
		sleep:     ctxSleep,
	}
}

// Guard exposes the run guard for the health endpoint.
func (s *Scheduler) Guard() *RunGuard {
	return s.guard
}

// Run executes one cycle immediately, then ticks until the context is
// cancelled. Blocks; in-flight cycles finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Scheduler started", "interval", s.interval)

	done := make(chan struct{})
	s.trigger(ctx, done)
	<-done

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Let a running cycle drain before reporting stopped.
			for !s.guard.TryAcquire() {
				time.Sleep(50 * time.Millisecond)
			}
			s.guard.Release()
			slog.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.trigger(ctx, nil)
		}
	}
}

// trigger starts a cycle if no cycle is in progress; otherwise the trigger
// is dropped. When done is non-nil it is closed once the attempt finishes.
func (s *Scheduler) trigger(ctx context.Context, done chan struct{}) {
	runID := uuid.NewString()

	if !s.guard.TryAcquire() {
		slog.Info("Previous cycle still running, dropping trigger", "run_id", runID)
		if done != nil {
			close(done)
		}
		return
	}

	go func() {
		// LIFO: the slot is released before done is observable.
		if done != nil {
			defer close(done)
		}
		defer s.guard.Release()

		if err := s.runCycle(ctx, runID); err != nil {
			slog.Error("Cycle failed", "run_id", runID, "error", err)
			if s.notifier != nil {
				s.notifier.Notify(ctx, "Cycle failed", fmt.Sprintf("run %s: %v", runID, err))
			}
			// Cooldown before releasing the slot so a persistent failure
			// cannot turn into a retry storm.
			_ = s.sleep(ctx, s.cooldown)
		}
	}()
}

// runCycle performs fetch → process → cursor persist. The cursor is only
// advanced after a fully successful cycle, so a failed run is re-fetched
// from the last known-good position.
func (s *Scheduler) runCycle(ctx context.Context, runID string) error {
	slog.Info("Cycle starting", "run_id", runID)

	cursor, err := s.store.GetCursor(ctx)
	if err != nil {
		return err
	}

	newestID, err := s.processor.ProcessCycle(ctx, cursor)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	upd := domain.CursorUpdate{LastProcessedAt: &now}
	if newestID != "" && newestID != cursor.LastMentionID {
		upd.LastMentionID = &newestID
	}
	if _, err := s.store.UpdateCursor(ctx, upd); err != nil {
		return err
	}

	slog.Info("Cycle complete", "run_id", runID, "last_mention_id", newestID)
	return nil
}
