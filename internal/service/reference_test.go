package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(db)
	ctx := context.Background()

	createIngredient(t, db, "Flour", "g")
	createIngredient(t, db, "flaxseed", "g")
	createIngredient(t, db, "Sugar", "g")

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Prefix match is case-insensitive.
	matched, err := svc.ListIngredients(ctx, "fl")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "Flour", matched[0].Name)
	assert.Equal(t, "flaxseed", matched[1].Name)

	none, err := svc.ListIngredients(ctx, "pepper")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListIngredientsTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(db)
	ctx := context.Background()

	createIngredient(t, db, "100% Cocoa", "g")
	createIngredient(t, db, "1000 Island Dressing", "ml")
	createIngredient(t, db, "Sea_salt flakes", "g")
	createIngredient(t, db, "Sessame oil", "ml")

	// A "%" in the query must not act as a catch-all wildcard.
	matched, err := svc.ListIngredients(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "100% Cocoa", matched[0].Name)

	// "_" must not match an arbitrary single character.
	matched, err = svc.ListIngredients(ctx, "Se_")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Sea_salt flakes", matched[0].Name)

	matched, err = svc.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, matched)
}
