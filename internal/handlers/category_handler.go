package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/models"
	"budgetledger/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name     string              `json:"name" binding:"required,min=1,max=100"`
	Type     models.CategoryType `json:"type" binding:"required,category_type"`
	Color    string              `json:"color" binding:"omitempty,max=20"`
	Icon     *string             `json:"icon" binding:"omitempty,max=20"`
	ParentID *int64              `json:"parent_id" binding:"omitempty,gt=0"`
}

// ListCategories returns the active categories ordered by name
// @Summary     List categories
// @Description List every active category ordered by name
// @Tags        categories
// @Produce     json
// @Success     200 {object} map[string][]models.Category "Active categories"
// @Failure     500 {object} ErrorResponse "Storage error"
// @Router      /budget/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListActiveCategories(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategoryByID returns one category, active or not
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Param       id path int true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /budget/categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Failure     500 {object} ErrorResponse "Storage error"
// @Router      /budget/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), services.CreateCategoryInput{
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory changes only the fields present in the body. A field
// set to null is cleared where the column allows it.
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       id      path int                          true "Category ID"
// @Param       request body services.UpdateCategoryInput true "Fields to change"
// @Success     200 {object} models.Category "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /budget/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var in services.UpdateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory deactivates a category. Repeating the call succeeds.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Param       id path int true "Category ID"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /budget/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// InitializeDefaults seeds the starter categories into an empty store
// @Summary     Seed default categories
// @Tags        categories
// @Produce     json
// @Success     200 {object} map[string]int "Number of categories created"
// @Router      /budget/categories/defaults [post]
func (h *CategoryHandler) InitializeDefaults(c *gin.Context) {
	created, err := h.categoryService.InitializeDefaults(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
