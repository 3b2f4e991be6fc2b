package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-organizer/internal/dateutil"
	"pocket-organizer/internal/model"
)

func TestUpsertMealPlanCreatesThenUpdates(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	plans := NewPlanRepository(db, nil)

	day := time.Date(2026, 2, 1, 13, 45, 0, 0, time.Local)

	first, err := plans.UpsertMealPlan(ctx, day, model.MealLunch, "salad")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "salad", first.Content)
	assert.True(t, first.Day.Equal(dateutil.StartOfDay(day)))

	// Same key at a different time of day updates rather than duplicates.
	later := time.Date(2026, 2, 1, 20, 5, 0, 0, time.Local)
	second, err := plans.UpsertMealPlan(ctx, later, model.MealLunch, "soup")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "soup", second.Content)

	var count int64
	require.NoError(t, db.Model(&model.MealPlan{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := plans.MealPlanFor(ctx, day, model.MealLunch)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "soup", got.Content)
}

func TestUpsertMealPlanDistinctKeys(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	plans := NewPlanRepository(db, nil)

	day := time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local)
	_, err := plans.UpsertMealPlan(ctx, day, model.MealBreakfast, "eggs")
	require.NoError(t, err)
	_, err = plans.UpsertMealPlan(ctx, day, model.MealDinner, "rice")
	require.NoError(t, err)
	_, err = plans.UpsertMealPlan(ctx, day.AddDate(0, 0, 1), model.MealBreakfast, "toast")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.MealPlan{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestUpsertMealPlanEmptyContentNotPersisted(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	plans := NewPlanRepository(db, nil)

	day := time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local)
	plan, err := plans.UpsertMealPlan(ctx, day, model.MealLunch, "")
	require.NoError(t, err)
	assert.Nil(t, plan)

	got, err := plans.MealPlanFor(ctx, day, model.MealLunch)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Clearing an existing plan keeps the row but empties it.
	_, err = plans.UpsertMealPlan(ctx, day, model.MealLunch, "salad")
	require.NoError(t, err)
	cleared, err := plans.UpsertMealPlan(ctx, day, model.MealLunch, "")
	require.NoError(t, err)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Content)
}

func TestUpsertPeriodPlanNormalizesToPeriodStart(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	plans := NewPlanRepository(db, nil)

	// Monday and Friday of the same ISO week hit the same row.
	monday := time.Date(2026, 2, 2, 8, 0, 0, 0, time.Local)
	friday := time.Date(2026, 2, 6, 22, 0, 0, 0, time.Local)

	first, err := plans.UpsertPeriodPlan(ctx, model.PeriodWeekly, monday, "3 runs")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.StartDate.Equal(dateutil.StartOfWeek(monday)))

	second, err := plans.UpsertPeriodPlan(ctx, model.PeriodWeekly, friday, "4 runs")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := plans.PeriodPlanFor(ctx, model.PeriodWeekly, friday)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "4 runs", got.Content)

	// A monthly plan for the same dates is a different key.
	monthly, err := plans.UpsertPeriodPlan(ctx, model.PeriodMonthly, friday, "gym pass")
	require.NoError(t, err)
	require.NotNil(t, monthly)
	assert.NotEqual(t, first.ID, monthly.ID)
	assert.True(t, monthly.StartDate.Equal(dateutil.StartOfMonth(friday)))

	var count int64
	require.NoError(t, db.Model(&model.PeriodPlan{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUpsertPeriodPlanIdempotent(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	plans := NewPlanRepository(db, nil)

	ref := time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		_, err := plans.UpsertPeriodPlan(ctx, model.PeriodWeekly, ref, "same content")
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&model.PeriodPlan{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
