package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

const (
	MinAmount      = 1
	MaxAmount      = 32000
	MinCookingTime = 1
	MaxCookingTime = 32000
)

// RecipeService handles recipe reads, the create/update write transaction and
// the favorite / shopping-cart toggles.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validatePayload runs the pre-write checks in a fixed order: empty tag set,
// duplicate tags, cooking time range, amount ranges. Reference existence is
// checked inside the transaction. cookingTime is nil on partial updates that
// do not touch it.
func validatePayload(tags []uuid.UUID, ingredients []types.IngredientAmount, cookingTime *int) error {
	if len(tags) == 0 {
		return NewValidationError("tags", "at least one tag is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(tags))
	for _, id := range tags {
		if _, dup := seen[id]; dup {
			return NewValidationError("tags", "tags must be unique")
		}
		seen[id] = struct{}{}
	}
	if cookingTime != nil && (*cookingTime < MinCookingTime || *cookingTime > MaxCookingTime) {
		return NewValidationError("cooking_time",
			fmt.Sprintf("must be between %d and %d", MinCookingTime, MaxCookingTime))
	}
	if len(ingredients) == 0 {
		return NewValidationError("ingredients", "at least one ingredient is required")
	}
	for _, item := range ingredients {
		if item.Amount < MinAmount || item.Amount > MaxAmount {
			return NewValidationError("ingredients",
				fmt.Sprintf("amount must be between %d and %d", MinAmount, MaxAmount))
		}
	}
	return nil
}

// resolveTags loads every referenced tag, failing with ErrNotFound when any
// identifier does not resolve to a row.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("tag: %w", ErrNotFound)
	}
	return tags, nil
}

// checkIngredientsExist verifies every referenced ingredient id resolves.
func checkIngredientsExist(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, 0, len(items))
	unique := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := unique[item.ID]; !ok {
			unique[item.ID] = struct{}{}
			ids = append(ids, item.ID)
		}
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("ingredient: %w", ErrNotFound)
	}
	return nil
}

// Create validates the payload and persists the recipe, its tag set and its
// line items in a single transaction. The author is always the authenticated
// caller, never taken from the payload.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	cookingTime := req.CookingTime
	if err := validatePayload(req.Tags, req.Ingredients, &cookingTime); err != nil {
		return nil, err
	}

	var recipeID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}

		recipe := models.Recipe{
			AuthorID:    authorID,
			Name:        req.Name,
			Text:        req.Text,
			Image:       req.Image,
			CookingTime: req.CookingTime,
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		if err := createLineItems(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, recipeID)
}

// Update applies full-replacement semantics inside one transaction: present
// scalar fields overwrite, the tag set is replaced wholesale, and the line
// item set is deleted and re-created from the payload. Only the author may
// update a recipe.
func (s *RecipeService) Update(ctx context.Context, recipeID, callerID uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	if err := validatePayload(req.Tags, req.Ingredients, req.CookingTime); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock prevents two concurrent writers from interleaving tag or
		// line-item mutations on the same recipe. SQLite serializes writes on
		// its own and has no FOR UPDATE.
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var recipe models.Recipe
		if err := q.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != callerID {
			return ErrForbidden
		}

		tags, err := resolveTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}

		if req.Name != nil {
			recipe.Name = *req.Name
		}
		if req.Text != nil {
			recipe.Text = *req.Text
		}
		if req.Image != nil {
			recipe.Image = *req.Image
		}
		if req.CookingTime != nil {
			recipe.CookingTime = *req.CookingTime
		}
		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return err
		}

		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, recipeID)
}

func createLineItems(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	lineItems := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return tx.Create(&lineItems).Error
}

// GetByID loads a recipe with its tags and resolved line items.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Delete removes a recipe together with its line items, favorites and cart
// entries in one transaction, so no orphan rows survive. Author-only.
func (s *RecipeService) Delete(ctx context.Context, recipeID, callerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != callerID {
			return ErrForbidden
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// RecipeFilter narrows the recipe listing. FavoritedBy / InCartOf carry the
// caller's id when the corresponding flags are set.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        int
	Limit       int
}

func (s *RecipeService) listQuery(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if len(f.TagSlugs) > 0 {
		q = q.Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
	}
	if f.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.FavoritedBy != nil {
		q = q.Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *f.FavoritedBy)
	}
	if f.InCartOf != nil {
		q = q.Joins("JOIN cart_items ON cart_items.recipe_id = recipes.id").
			Where("cart_items.user_id = ?", *f.InCartOf)
	}
	return q
}

// List returns one page of recipes, newest first, plus the total match count.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = types.DefaultPageSize
	}

	var count int64
	if err := s.listQuery(ctx, f).Distinct("recipes.id").Count(&count).Error; err != nil {
		return nil, 0, err
	}

	// Postgres requires DISTINCT select lists to contain every ORDER BY
	// expression, so the ordering column rides along with the id.
	var page []struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}
	err := s.listQuery(ctx, f).
		Distinct("recipes.id", "recipes.created_at").
		Order("recipes.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Scan(&page).Error
	if err != nil {
		return nil, 0, err
	}
	if len(page) == 0 {
		return []models.Recipe{}, count, nil
	}
	ids := make([]uuid.UUID, 0, len(page))
	for _, row := range page {
		ids = append(ids, row.ID)
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// Favorite marks a recipe as favorited by the caller. Favoriting an already
// favorited recipe is a validation error, keeping the toggle idempotent-safe.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var existing models.Favorite
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return nil, NewValidationError("errors", "recipe is already in favorites")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		return nil, duplicateAsValidation(err, "errors", "recipe is already in favorites")
	}
	return recipe, nil
}

// Unfavorite removes the caller's favorite. A missing favorite is ErrNotFound
// and leaves the table unchanged.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToCart puts a recipe into the caller's shopping cart.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var existing models.CartItem
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return nil, NewValidationError("errors", "recipe is already in shopping cart")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := models.CartItem{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, duplicateAsValidation(err, "errors", "recipe is already in shopping cart")
	}
	return recipe, nil
}

// RemoveFromCart removes a recipe from the caller's shopping cart.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFavorited reports whether userID has favorited the recipe. The caller's
// identity is always passed explicitly.
func (s *RecipeService) IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) bool {
	var count int64
	s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count)
	return count > 0
}

// IsInCart reports whether the recipe is in userID's shopping cart.
func (s *RecipeService) IsInCart(ctx context.Context, userID, recipeID uuid.UUID) bool {
	var count int64
	s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count)
	return count > 0
}

func (s *RecipeService) loadRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}
