package database

import (
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// RunMigrations brings the schema up to date for every entity in the data
// model. Join/aggregate tables (line items, favorites, cart entries, follows)
// carry ON DELETE CASCADE foreign keys on Postgres.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.CartItem{},
	)
}
