package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/models"
)

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrations?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	// Every table exists and accepts rows afterwards.
	user := models.User{
		Email:        "cook@example.com",
		Username:     "cook",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
	}
	require.NoError(t, db.Create(&user).Error)

	for _, model := range []interface{}{
		&models.User{}, &models.Follow{}, &models.Tag{}, &models.Ingredient{},
		&models.Recipe{}, &models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{},
	} {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}

	// Re-running is a no-op, not an error.
	assert.NoError(t, RunMigrations(db))
}

func TestHealthCheck(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:health?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	assert.NoError(t, HealthCheck(context.Background(), db))
}
