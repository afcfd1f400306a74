package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// FollowService manages the directed follow graph between users.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Subscription is one followed author together with a preview of their
// recipes.
type Subscription struct {
	User         models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscribe creates a follow edge from userID to targetID. Self-follows and
// duplicate edges are rejected before any write.
func (s *FollowService) Subscribe(ctx context.Context, userID, targetID uuid.UUID) (*models.User, error) {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if userID == targetID {
		return nil, NewValidationError("following", "cannot subscribe to yourself")
	}

	var existing models.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		First(&existing).Error
	if err == nil {
		return nil, NewValidationError("following", "already subscribed to this author")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	follow := models.Follow{UserID: userID, FollowingID: targetID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return nil, duplicateAsValidation(err, "following", "already subscribed to this author")
	}
	return &target, nil
}

// Unsubscribe removes the follow edge. A missing edge is ErrNotFound.
func (s *FollowService) Unsubscribe(ctx context.Context, userID, targetID uuid.UUID) error {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsSubscribed reports whether userID follows targetID. The caller's identity
// is always passed explicitly.
func (s *FollowService) IsSubscribed(ctx context.Context, userID, targetID uuid.UUID) bool {
	var count int64
	s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Count(&count)
	return count > 0
}

// AuthorPreview loads an author's recipes plus their total count, the same
// shape a subscription listing entry carries.
func (s *FollowService) AuthorPreview(ctx context.Context, authorID uuid.UUID, recipesLimit int) ([]models.Recipe, int64, error) {
	if recipesLimit <= 0 {
		// No preview cap requested; -1 cancels the LIMIT clause.
		recipesLimit = -1
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(recipesLimit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// Subscriptions returns one page of the authors userID follows, each with up
// to recipesLimit of their recipes and the total recipe count.
func (s *FollowService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) ([]Subscription, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.user_id = ?", userID)

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := base.Session(&gorm.Session{}).
		Order("follows.created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	subs := make([]Subscription, 0, len(authors))
	for _, author := range authors {
		recipes, recipesCount, err := s.AuthorPreview(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, Subscription{
			User:         author,
			Recipes:      recipes,
			RecipesCount: recipesCount,
		})
	}
	return subs, count, nil
}
