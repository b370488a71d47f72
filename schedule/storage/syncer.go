package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cyp0633/upkeep/schedule"
)

// Syncer runs the reconciler from work-order hooks and applies its plans.
type Syncer struct {
	store      Storage
	reconciler *schedule.Reconciler
	now        func() time.Time
	logger     *slog.Logger
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithClock sets the source of the current time, used for the end-of-year
// bound of open-ended recurrences.
func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSyncLogger sets the logger for the syncer
func WithSyncLogger(logger *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSyncer creates a syncer. A nil reconciler gets the default one.
func NewSyncer(store Storage, reconciler *schedule.Reconciler, opts ...SyncerOption) (*Syncer, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if reconciler == nil {
		reconciler = schedule.NewReconciler()
	}

	s := &Syncer{
		store:      store,
		reconciler: reconciler,
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OnCreate generates and stores the schedule of a new work order.
func (s *Syncer) OnCreate(ctx context.Context, wo schedule.WorkOrderView) ([]schedule.Instance, error) {
	drafts, err := s.reconciler.Create(wo, s.now())
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	created, err := s.store.ApplyPlan(ctx, schedule.Plan{Create: drafts})
	if err != nil {
		return nil, fmt.Errorf("failed to store schedule for %s: %w", wo.ID, err)
	}
	s.logger.Info("stored schedule", "work_order", wo.ID, "count", len(created))
	return created, nil
}

// OnUpdate regenerates the pending part of a work order's schedule when one
// of its recurrence fields changed.
func (s *Syncer) OnUpdate(ctx context.Context, wo schedule.WorkOrderView, changed []schedule.Field) ([]schedule.Instance, error) {
	if !schedule.RequiresRegeneration(changed) {
		return nil, nil
	}

	existing, err := s.store.ListInstances(ctx, wo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule for %s: %w", wo.ID, err)
	}

	plan, err := s.reconciler.Reconcile(wo, existing, changed, s.now())
	if err != nil {
		return nil, err
	}
	if plan.IsEmpty() {
		return nil, nil
	}

	created, err := s.store.ApplyPlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to apply schedule plan for %s: %w", wo.ID, err)
	}
	s.logger.Info("regenerated schedule",
		"work_order", wo.ID,
		"deleted", len(plan.Delete),
		"created", len(created))
	return created, nil
}
