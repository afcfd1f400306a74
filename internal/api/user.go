package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/types"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	authService   *service.AuthService
}

func NewUserHandler(userService *service.UserService, followService *service.FollowService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		authService:   authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.POST("", h.CreateUser)
		// Static segments registered before /:id so they take precedence.
		users.GET("/me", auth, h.Me)
		users.GET("/subscriptions", auth, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

// CreateUser registers an account and echoes the created user. Same backing
// flow as POST /auth/register, which returns a token instead.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Register(req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(c.Request.Context(), h.followService, user, nil))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := types.PageParams(c.Request)

	users, count, err := h.userService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	var caller *uuid.UUID
	if id, ok := currentUserID(c); ok {
		caller = &id
	}

	results := make([]types.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, userResponse(c.Request.Context(), h.followService, &users[i], caller))
	}
	c.JSON(http.StatusOK, types.NewPage(c.Request, count, page, limit, results))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var caller *uuid.UUID
	if id, ok := currentUserID(c); ok {
		caller = &id
	}
	c.JSON(http.StatusOK, userResponse(c.Request.Context(), h.followService, user, caller))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(c.Request.Context(), h.followService, user, &userID))
}

// subscriptionResponse renders a followed author; is_subscribed is true by
// construction since the listing only contains followed authors.
func subscriptionResponse(sub *service.Subscription) types.SubscriptionResponse {
	recipes := make([]types.RecipeSummary, 0, len(sub.Recipes))
	for i := range sub.Recipes {
		recipes = append(recipes, recipeSummary(&sub.Recipes[i]))
	}
	return types.SubscriptionResponse{
		ID:           sub.User.ID,
		Email:        sub.User.Email,
		Username:     sub.User.Username,
		FirstName:    sub.User.FirstName,
		LastName:     sub.User.LastName,
		IsSubscribed: true,
		Recipes:      recipes,
		RecipesCount: sub.RecipesCount,
	}
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, limit := types.PageParams(c.Request)
	recipesLimit := 0
	if raw := c.Query("recipes_limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			recipesLimit = n
		}
	}

	subs, count, err := h.followService.Subscriptions(c.Request.Context(), userID, page, limit, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		results = append(results, subscriptionResponse(&subs[i]))
	}
	c.JSON(http.StatusOK, types.NewPage(c.Request, count, page, limit, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	target, err := h.followService.Subscribe(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, count, err := h.followService.AuthorPreview(c.Request.Context(), target.ID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscriptionResponse(&service.Subscription{
		User:         *target,
		Recipes:      recipes,
		RecipesCount: count,
	}))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	if err := h.followService.Unsubscribe(c.Request.Context(), userID, targetID); err != nil {
		if err == service.ErrNotFound {
			notFound(c, "Not found.")
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
