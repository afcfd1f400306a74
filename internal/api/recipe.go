package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/types"
)

type RecipeHandler struct {
	recipeService   *service.RecipeService
	shoppingService *service.ShoppingListService
	followService   *service.FollowService
	authService     *service.AuthService
	imageService    *service.ImageService
	rateLimiter     *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	shoppingService *service.ShoppingListService,
	followService *service.FollowService,
	authService *service.AuthService,
	imageService *service.ImageService,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
		followService:   followService,
		authService:     authService,
		imageService:    imageService,
		rateLimiter:     rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		// Registered before /:id so the static segment wins.
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)

		create := []gin.HandlerFunc{auth}
		if h.rateLimiter != nil {
			create = append(create, h.rateLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, h.CreateRecipe)...)

		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)

		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromShoppingCart)
	}
}

// recipeResponse assembles the full detail shape. The caller's identity is
// passed explicitly; nil means anonymous and all relational flags are false.
func (h *RecipeHandler) recipeResponse(ctx context.Context, r *models.Recipe, caller *uuid.UUID) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:          r.ID,
		Tags:        tagResponses(r.Tags),
		Author:      userResponse(ctx, h.followService, &r.Author, caller),
		Ingredients: lineItemResponses(r.Ingredients),
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt,
	}
	if caller != nil {
		resp.IsFavorited = h.recipeService.IsFavorited(ctx, *caller, r.ID)
		resp.IsInShoppingCart = h.recipeService.IsInCart(ctx, *caller, r.ID)
	}
	return resp
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := types.PageParams(c.Request)
	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Page:     page,
		Limit:    limit,
	}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"author": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	var caller *uuid.UUID
	if id, ok := currentUserID(c); ok {
		caller = &id
	}

	// The relational filters are meaningless without a caller to relate to.
	if c.Query("is_favorited") == "1" {
		if caller == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required for is_favorited"})
			return
		}
		filter.FavoritedBy = caller
	}
	if c.Query("is_in_shopping_cart") == "1" {
		if caller == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required for is_in_shopping_cart"})
			return
		}
		filter.InCartOf = caller
	}

	recipes, count, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, h.recipeResponse(c.Request.Context(), &recipes[i], caller))
	}
	c.JSON(http.StatusOK, types.NewPage(c.Request, count, page, limit, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}

	recipe, err := h.recipeService.GetByID(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	var caller *uuid.UUID
	if id, ok := currentUserID(c); ok {
		caller = &id
	}
	c.JSON(http.StatusOK, h.recipeResponse(c.Request.Context(), recipe, caller))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if req.Image != "" {
		resolved, err := h.imageService.Resolve(c.Request.Context(), req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		req.Image = resolved
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.recipeResponse(c.Request.Context(), recipe, &userID))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if req.Image != nil && *req.Image != "" {
		resolved, err := h.imageService.Resolve(c.Request.Context(), *req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		req.Image = &resolved
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), recipeID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.recipeResponse(c.Request.Context(), recipe, &userID))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), recipeID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	recipe, err := h.recipeService.Favorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeSummary(recipe))
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	if err := h.recipeService.Unfavorite(c.Request.Context(), userID, recipeID); err != nil {
		if err == service.ErrNotFound {
			notFound(c, "The favorite object does not exist.")
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	recipe, err := h.recipeService.AddToCart(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeSummary(recipe))
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "Not found.")
		return
	}
	userID, _ := currentUserID(c)

	if err := h.recipeService.RemoveFromCart(c.Request.Context(), userID, recipeID); err != nil {
		if err == service.ErrNotFound {
			notFound(c, "The shopping cart entry does not exist.")
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	report, err := h.shoppingService.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}
