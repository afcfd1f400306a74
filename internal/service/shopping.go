package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// ShoppingListHeader is the first line of the rendered report.
const ShoppingListHeader = "Shopping list:"

// ShoppingListService compiles a user's shopping cart into a consolidated
// plain-text ingredient list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type mergeKey struct {
	name string
	unit string
}

// Build reads the user's cart entries, expands each recipe into its line
// items and merges amounts by (ingredient name, measurement unit) — not by
// ingredient id, so distinct rows sharing the pair collapse into one line.
// Lines appear in first-seen order. An empty cart yields only the header.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) (string, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Recipe.Ingredients.Ingredient").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return "", err
	}

	var order []mergeKey
	sums := make(map[mergeKey]float64)
	for _, item := range items {
		for _, line := range item.Recipe.Ingredients {
			key := mergeKey{
				name: line.Ingredient.Name,
				unit: line.Ingredient.MeasurementUnit,
			}
			if _, seen := sums[key]; !seen {
				order = append(order, key)
			}
			sums[key] += float64(line.Amount)
		}
	}

	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteString("\n\n")
	for _, key := range order {
		b.WriteString(key.name)
		b.WriteString(" (")
		b.WriteString(key.unit)
		b.WriteString(") — ")
		b.WriteString(strconv.FormatFloat(sums[key], 'f', -1, 64))
		b.WriteString("\n")
	}
	return b.String(), nil
}
