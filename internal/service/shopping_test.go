package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

func TestShoppingListMergesByNameAndUnit(t *testing.T) {
	db := setupTestDB(t)
	recipes := NewRecipeService(db)
	shopping := NewShoppingListService(db)
	author := createUser(t, db, "author")
	buyer := createUser(t, db, "buyer")
	tag := createTag(t, db, "Dinner", "dinner")

	flour := createIngredient(t, db, "Flour", "g")
	sugar := createIngredient(t, db, "Sugar", "g")
	egg := createIngredient(t, db, "Egg", "pcs")
	// A second row sharing (name, unit) with flour: merged by the pair, not id.
	flourDup := createIngredient(t, db, "Flour", "g")

	first, err := recipes.Create(context.Background(), author.ID, &types.CreateRecipeRequest{
		Name:        "Bread",
		Text:        "Bake it.",
		CookingTime: 60,
		Tags:        []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 200},
			{ID: sugar.ID, Amount: 50},
		},
	})
	require.NoError(t, err)

	second, err := recipes.Create(context.Background(), author.ID, &types.CreateRecipeRequest{
		Name:        "Cake",
		Text:        "Bake it too.",
		CookingTime: 45,
		Tags:        []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{
			{ID: flourDup.ID, Amount: 100},
			{ID: egg.ID, Amount: 2},
		},
	})
	require.NoError(t, err)

	_, err = recipes.AddToCart(context.Background(), buyer.ID, first.ID)
	require.NoError(t, err)
	_, err = recipes.AddToCart(context.Background(), buyer.ID, second.ID)
	require.NoError(t, err)

	report, err := shopping.Build(context.Background(), buyer.ID)
	require.NoError(t, err)

	// Amounts merged across recipes and ingredient rows, lines in first-seen
	// order.
	expected := "Shopping list:\n\n" +
		"Flour (g) — 300\n" +
		"Sugar (g) — 50\n" +
		"Egg (pcs) — 2\n"
	assert.Equal(t, expected, report)
}

func TestShoppingListSameNameDifferentUnitStaysSeparate(t *testing.T) {
	db := setupTestDB(t)
	recipes := NewRecipeService(db)
	shopping := NewShoppingListService(db)
	author := createUser(t, db, "author")
	buyer := createUser(t, db, "buyer")
	tag := createTag(t, db, "Dinner", "dinner")

	milkMl := createIngredient(t, db, "Milk", "ml")
	milkG := createIngredient(t, db, "Milk", "g")

	recipe, err := recipes.Create(context.Background(), author.ID, &types.CreateRecipeRequest{
		Name:        "Porridge",
		Text:        "Simmer.",
		CookingTime: 15,
		Tags:        []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{
			{ID: milkMl.ID, Amount: 500},
			{ID: milkG.ID, Amount: 30},
		},
	})
	require.NoError(t, err)

	_, err = recipes.AddToCart(context.Background(), buyer.ID, recipe.ID)
	require.NoError(t, err)

	report, err := shopping.Build(context.Background(), buyer.ID)
	require.NoError(t, err)

	expected := "Shopping list:\n\n" +
		"Milk (ml) — 500\n" +
		"Milk (g) — 30\n"
	assert.Equal(t, expected, report)
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	shopping := NewShoppingListService(db)
	buyer := createUser(t, db, "buyer")

	report, err := shopping.Build(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\n", report)
}

func TestShoppingListOnlyOwnCart(t *testing.T) {
	db := setupTestDB(t)
	recipes := NewRecipeService(db)
	shopping := NewShoppingListService(db)
	author := createUser(t, db, "author")
	buyer := createUser(t, db, "buyer")
	other := createUser(t, db, "other")
	tag := createTag(t, db, "Dinner", "dinner")
	salt := createIngredient(t, db, "Salt", "g")

	recipe, err := recipes.Create(context.Background(), author.ID, &types.CreateRecipeRequest{
		Name:        "Broth",
		Text:        "Boil.",
		CookingTime: 30,
		Tags:        []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{{ID: salt.ID, Amount: 5}},
	})
	require.NoError(t, err)

	_, err = recipes.AddToCart(context.Background(), other.ID, recipe.ID)
	require.NoError(t, err)

	report, err := shopping.Build(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\n", report)

	var count int64
	db.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
