package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/upkeep/schedule"
	"github.com/cyp0633/upkeep/schedule/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func day(d int) time.Time {
	return time.Date(2019, 2, d, 0, 0, 0, 0, time.UTC)
}

func draft(workOrderID string, d int) schedule.Draft {
	return schedule.Draft{
		WorkOrderID: workOrderID,
		AssigneeID:  "tech-1",
		CreatedBy:   "mgr-1",
		Status:      schedule.StatusPending,
		DueDate:     day(d),
	}
}

func TestStore_ApplyPlanAndList(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	created, err := s.ApplyPlan(ctx, schedule.Plan{Create: []schedule.Draft{
		draft("wo-1", 22), draft("wo-1", 20), draft("wo-1", 21), draft("wo-2", 20),
	}})
	require.NoError(t, err)
	require.Len(t, created, 4)
	assert.NotEmpty(t, created[0].ID)
	assert.NotEqual(t, created[0].ID, created[1].ID)

	list, err := s.ListInstances(ctx, "wo-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, inst := range list {
		assert.True(t, inst.DueDate.Equal(day(20+i)), "instance %d due %v", i, inst.DueDate)
		assert.Equal(t, "tech-1", inst.AssigneeID)
		assert.Equal(t, "mgr-1", inst.CreatedBy)
		assert.Equal(t, schedule.StatusPending, inst.Status)
	}
}

func TestStore_ApplyPlanDeletesOnlyPending(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	created, err := s.ApplyPlan(ctx, schedule.Plan{Create: []schedule.Draft{
		draft("wo-1", 20), draft("wo-1", 21),
	}})
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(ctx, created[0].ID, schedule.StatusDone))

	_, err = s.ApplyPlan(ctx, schedule.Plan{
		Delete: []string{created[0].ID, created[1].ID},
		Create: []schedule.Draft{draft("wo-1", 25)},
	})
	require.NoError(t, err)

	list, err := s.ListInstances(ctx, "wo-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created[0].ID, list[0].ID)
	assert.Equal(t, schedule.StatusDone, list[0].Status)
	assert.True(t, list[1].DueDate.Equal(day(25)))
}

func TestStore_ApplyPlanRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	created, err := s.ApplyPlan(ctx, schedule.Plan{Create: []schedule.Draft{draft("wo-1", 20)}})
	require.NoError(t, err)

	bad := draft("wo-1", 21)
	bad.DueDate = time.Time{}
	_, err = s.ApplyPlan(ctx, schedule.Plan{
		Delete: []string{created[0].ID},
		Create: []schedule.Draft{draft("wo-1", 22), bad},
	})
	require.Error(t, err)

	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.ErrInvalidInput, serr.Type)

	// nothing from the rejected plan was applied
	list, err := s.ListInstances(ctx, "wo-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created[0].ID, list[0].ID)
}

func TestStore_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	err := s.SetStatus(ctx, "missing", schedule.StatusDone)
	assert.True(t, storage.IsNotFound(err))

	created, err := s.ApplyPlan(ctx, schedule.Plan{Create: []schedule.Draft{draft("wo-1", 20)}})
	require.NoError(t, err)

	err = s.SetStatus(ctx, created[0].ID, schedule.Status("archived"))
	require.Error(t, err)
	assert.False(t, storage.IsNotFound(err))
}

func TestStore_PreservesTimeOfDay(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	loc := time.FixedZone("UTC+3", 3*60*60)
	due := time.Date(2019, 2, 20, 9, 30, 0, 0, loc)
	d := draft("wo-1", 20)
	d.DueDate = due

	_, err := s.ApplyPlan(ctx, schedule.Plan{Create: []schedule.Draft{d}})
	require.NoError(t, err)

	list, err := s.ListInstances(ctx, "wo-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].DueDate.Equal(due))
}
