package goals

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/bodyforecast/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrFloat(f float64) *float64 { return &f }

func TestRepo_ListAndUpcoming(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(store.NewMemoryStore())
	base := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

	seed := []Goal{
		{UserID: "user-1", Title: "no date", CreatedAt: base},
		{UserID: "user-1", Title: "far", TargetDate: ptrTime(base.AddDate(0, 6, 0)), CreatedAt: base.Add(time.Hour)},
		{UserID: "user-1", Title: "done", Completed: true, TargetDate: ptrTime(base.AddDate(0, 0, 1)), CreatedAt: base.Add(2 * time.Hour)},
		{UserID: "user-1", Title: "soon", TargetDate: ptrTime(base.AddDate(0, 0, 7)), CreatedAt: base.Add(3 * time.Hour)},
		{UserID: "user-1", Title: "mid", TargetDate: ptrTime(base.AddDate(0, 1, 0)), CreatedAt: base.Add(4 * time.Hour)},
		{UserID: "user-2", Title: "other user", TargetDate: ptrTime(base), CreatedAt: base},
	}
	for _, g := range seed {
		_, err := repo.Add(ctx, g)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "mid", all[0].Title)
	assert.Equal(t, "no date", all[4].Title)

	upcoming, err := repo.Upcoming(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, upcoming, UpcomingLimit)
	assert.Equal(t, []string{"soon", "mid", "far"}, []string{upcoming[0].Title, upcoming[1].Title, upcoming[2].Title})
}

func TestRepo_Update_NoImplicitCompletion(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(store.NewMemoryStore())
	now := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)
	repo.nowFunc = func() time.Time { return now }

	goal, err := NewGoalRequest{Title: "Bench 100kg", TargetValue: ptrFloat(100)}.ToGoal("user-1", now)
	require.NoError(t, err)
	added, err := repo.Add(ctx, *goal)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "user-1", added.ID, map[string]any{"currentValue": 120.0})
	require.NoError(t, err)
	assert.Equal(t, 120.0, *updated.CurrentValue)
	assert.False(t, updated.Completed)

	updated, err = repo.Update(ctx, "user-1", added.ID, map[string]any{"completed": true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	_, err = repo.Update(ctx, "user-2", added.ID, map[string]any{"completed": false})
	assert.ErrorIs(t, err, ErrGoalNotFound)

	_, err = repo.Update(ctx, "user-1", "missing", map[string]any{"completed": false})
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestNewGoalRequest_ToGoal(t *testing.T) {
	now := time.Now()

	_, err := NewGoalRequest{Title: "   "}.ToGoal("user-1", now)
	assert.ErrorIs(t, err, ErrTitleRequired)

	goal, err := NewGoalRequest{Title: " 5kg減量 "}.ToGoal("user-1", now)
	require.NoError(t, err)
	assert.Equal(t, "5kg減量", goal.Title)
	assert.Equal(t, DefaultCategory, goal.Category)
	require.NotNil(t, goal.CurrentValue)
	assert.Equal(t, 0.0, *goal.CurrentValue)
	assert.False(t, goal.Completed)
}

func TestUpdateGoalRequest_Fields(t *testing.T) {
	_, err := UpdateGoalRequest{}.Fields()
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	done := true
	fields, err := UpdateGoalRequest{CurrentValue: ptrFloat(3), Completed: &done}.Fields()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"currentValue": 3.0, "completed": true}, fields)
}
