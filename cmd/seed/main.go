package main

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/models"
)

var tags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	{Name: "Dessert", Color: "#F9A62B", Slug: "dessert"},
}

var ingredients = []models.Ingredient{
	{Name: "Flour", MeasurementUnit: "g"},
	{Name: "Sugar", MeasurementUnit: "g"},
	{Name: "Salt", MeasurementUnit: "g"},
	{Name: "Butter", MeasurementUnit: "g"},
	{Name: "Milk", MeasurementUnit: "ml"},
	{Name: "Olive oil", MeasurementUnit: "ml"},
	{Name: "Egg", MeasurementUnit: "pcs"},
	{Name: "Onion", MeasurementUnit: "pcs"},
	{Name: "Garlic", MeasurementUnit: "cloves"},
	{Name: "Chicken breast", MeasurementUnit: "g"},
	{Name: "Rice", MeasurementUnit: "g"},
	{Name: "Tomato", MeasurementUnit: "pcs"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	for _, tag := range tags {
		if err := upsertTag(db, tag); err != nil {
			log.Fatalf("Failed to seed tag %q: %v", tag.Name, err)
		}
	}
	log.Printf("Seeded %d tags", len(tags))

	for _, ing := range ingredients {
		if err := upsertIngredient(db, ing); err != nil {
			log.Fatalf("Failed to seed ingredient %q: %v", ing.Name, err)
		}
	}
	log.Printf("Seeded %d ingredients", len(ingredients))

	if err := seedDemoUser(db); err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}

	log.Println("Seed complete")
}

func upsertTag(db *gorm.DB, tag models.Tag) error {
	var existing models.Tag
	err := db.Where("slug = ?", tag.Slug).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(&tag).Error
}

func upsertIngredient(db *gorm.DB, ing models.Ingredient) error {
	var existing models.Ingredient
	err := db.Where("name = ? AND measurement_unit = ?", ing.Name, ing.MeasurementUnit).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(&ing).Error
}

func seedDemoUser(db *gorm.DB) error {
	var existing models.User
	err := db.Where("email = ?", "demo@tastebook.dev").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Email:        "demo@tastebook.dev",
		Username:     "demo",
		FirstName:    "Demo",
		LastName:     "Cook",
		PasswordHash: string(hashed),
	}
	return db.Create(&user).Error
}
