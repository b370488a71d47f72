package schedule

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cyp0633/upkeep/recurrence"
)

// Reconciler decides which schedule instances to create for a new work
// order and which to replace after an update. It never persists anything.
type Reconciler struct {
	engine *recurrence.Engine
	logger *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger for the reconciler
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEngine replaces the default uncached recurrence engine.
func WithEngine(engine *recurrence.Engine) Option {
	return func(r *Reconciler) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// NewReconciler creates a reconciler.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = recurrence.NewEngine(recurrence.WithLogger(r.logger))
	}
	return r
}

// Create returns one pending draft per due date of the work order. A work
// order whose frequency is not resolved yet, or a custom one without
// parameters, yields no drafts. Malformed custom parameters are an error.
func (r *Reconciler) Create(wo WorkOrderView, now time.Time) ([]Draft, error) {
	mode, ok := recurrence.ParseMode(wo.Frequency)
	if !ok {
		r.logger.Debug("frequency not resolved, skipping schedule",
			"work_order", wo.ID, "frequency", wo.Frequency)
		return nil, nil
	}
	if mode == recurrence.ModeCustom && wo.CustomOccurrence == nil {
		r.logger.Debug("custom frequency without parameters, skipping schedule", "work_order", wo.ID)
		return nil, nil
	}

	spec, err := wo.Spec()
	if err != nil {
		return nil, fmt.Errorf("work order %s: %w", wo.ID, err)
	}

	dates, err := r.engine.Generate(spec, now)
	if err != nil {
		return nil, fmt.Errorf("work order %s: %w", wo.ID, err)
	}

	drafts := make([]Draft, 0, len(dates))
	for _, due := range dates {
		drafts = append(drafts, Draft{
			WorkOrderID: wo.ID,
			AssigneeID:  wo.AssigneeID,
			CreatedBy:   wo.CreatedBy,
			Status:      StatusPending,
			DueDate:     due,
		})
	}

	r.logger.Debug("generated schedule", "work_order", wo.ID, "mode", mode, "count", len(drafts))
	return drafts, nil
}

// Reconcile plans the schedule changes after a work-order update. Unless a
// recurrence field changed the plan is empty. Otherwise every pending
// instance of the work order is deleted and a fresh set is created;
// instances in any other status are left alone.
func (r *Reconciler) Reconcile(wo WorkOrderView, existing []Instance, changed []Field, now time.Time) (Plan, error) {
	if !RequiresRegeneration(changed) {
		return Plan{}, nil
	}

	drafts, err := r.Create(wo, now)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Create: drafts}
	for _, inst := range existing {
		if inst.WorkOrderID == wo.ID && inst.Status == StatusPending {
			plan.Delete = append(plan.Delete, inst.ID)
		}
	}

	r.logger.Info("reconciled schedule",
		"work_order", wo.ID,
		"deleted", len(plan.Delete),
		"created", len(plan.Create))
	return plan, nil
}

// RequiresRegeneration reports whether any of the changed fields affects
// the recurrence.
func RequiresRegeneration(changed []Field) bool {
	for _, f := range changed {
		if _, ok := recurrenceFields[f]; ok {
			return true
		}
	}
	return false
}
