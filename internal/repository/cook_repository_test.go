package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/model"
)

func TestIngredientCategoryDeleteCascades(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	cook := NewCookRepository(db, nil)

	meat := model.IngredientCategory{Name: "肉类", Icon: "🥩", ColorHex: "#FF6B6B"}
	require.NoError(t, cook.CreateCategory(ctx, &meat))
	veg := model.IngredientCategory{Name: "蔬菜", Icon: "🥬", ColorHex: "#6BCB77"}
	require.NoError(t, cook.CreateCategory(ctx, &veg))

	for _, name := range []string{"猪肉", "牛肉", "鸡肉"} {
		require.NoError(t, cook.AddIngredient(ctx, &model.Ingredient{
			Name: name, Icon: "🥩", CategoryID: &meat.ID,
		}))
	}
	kept := model.Ingredient{Name: "白菜", Icon: "🥬", CategoryID: &veg.ID}
	require.NoError(t, cook.AddIngredient(ctx, &kept))

	require.NoError(t, cook.DeleteCategory(ctx, meat.ID))

	_, err := cook.FindCategory(ctx, meat.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	left, err := cook.ListIngredients(ctx, veg.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.ID, left[0].ID)
}

func TestIngredientRequiresLiveCategory(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	cook := NewCookRepository(db, nil)

	err := cook.AddIngredient(ctx, &model.Ingredient{Name: "无主", Icon: "❓"})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)

	err = cook.AddIngredient(ctx, &model.Ingredient{Name: "悬空", Icon: "❓", CategoryID: uintPtr(99)})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
}

func TestIngredientCategoryValidation(t *testing.T) {
	db, _ := newTestDB(t)
	cook := NewCookRepository(db, nil)

	err := cook.CreateCategory(context.Background(), &model.IngredientCategory{Name: "坏颜色", ColorHex: "FF6B6B"})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
}

func TestIngredientDelete(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	cook := NewCookRepository(db, nil)

	fruit := model.IngredientCategory{Name: "水果", Icon: "🍎", ColorHex: "#FF9F63"}
	require.NoError(t, cook.CreateCategory(ctx, &fruit))
	apple := model.Ingredient{Name: "苹果", Icon: "🍎", CategoryID: &fruit.ID}
	require.NoError(t, cook.AddIngredient(ctx, &apple))

	require.NoError(t, cook.DeleteIngredient(ctx, apple.ID))
	require.ErrorIs(t, cook.DeleteIngredient(ctx, apple.ID), apperr.ErrNotFound)

	// The category itself is untouched.
	_, err := cook.FindCategory(ctx, fruit.ID)
	require.NoError(t, err)
}
