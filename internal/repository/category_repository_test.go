package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/events"
	"pocket-organizer/internal/model"
)

func TestCategoryDeleteCascadesToTasks(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db, nil)
	tasks := NewTaskRepository(db, nil)

	reading := model.Category{Name: "Reading", Icon: "📖", ColorHex: "#FF63B3"}
	require.NoError(t, categories.Create(ctx, &reading))
	other := model.Category{Name: "AI", Icon: "🤖", ColorHex: "#63B3FF"}
	require.NoError(t, categories.Create(ctx, &other))

	for _, title := range []string{"ch. 1", "ch. 2", "ch. 3"} {
		require.NoError(t, tasks.Create(ctx, &model.Task{
			Title:      title,
			Section:    model.SectionSecondary,
			CategoryID: &reading.ID,
		}))
	}
	kept := model.Task{Title: "survives", Section: model.SectionSecondary, CategoryID: &other.ID}
	require.NoError(t, tasks.Create(ctx, &kept))

	require.NoError(t, categories.Delete(ctx, reading.ID))

	_, err := categories.FindByID(ctx, reading.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)

	remaining, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
}

func TestCategoryDeleteWithNoTasks(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db, nil)

	empty := model.Category{Name: "Empty", Icon: "📦", ColorHex: "#AABBCC"}
	require.NoError(t, categories.Create(ctx, &empty))
	require.NoError(t, categories.Delete(ctx, empty.ID))

	all, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategoryDeleteNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	categories := NewCategoryRepository(db, nil)

	require.ErrorIs(t, categories.Delete(context.Background(), 404), apperr.ErrNotFound)
}

func TestCategoryValidation(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db, nil)

	err := categories.Create(ctx, &model.Category{Icon: "📖", ColorHex: "#FF63B3"})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)

	err = categories.Create(ctx, &model.Category{Name: "Bad color", ColorHex: "red"})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
}

func TestCategoryMutationsPublishEvents(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	broker := events.NewBroker()
	defer broker.Stop()
	sub := broker.Subscribe()

	categories := NewCategoryRepository(db, broker)
	category := model.Category{Name: "Reading", Icon: "📖", ColorHex: "#FF63B3"}
	require.NoError(t, categories.Create(ctx, &category))

	ev := <-sub
	assert.Equal(t, "category", ev.Entity)
	assert.Equal(t, events.OpInsert, ev.Op)
	assert.Equal(t, category.ID, ev.ID)

	require.NoError(t, categories.Delete(ctx, category.ID))
	ev = <-sub
	assert.Equal(t, events.OpDelete, ev.Op)
}
