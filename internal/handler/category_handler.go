package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/response"
	"github.com/cetlabs/cetexam-backend/internal/service"
	"github.com/cetlabs/cetexam-backend/internal/validator"
)

// CategoryHandler handles the subject category registry endpoints.
type CategoryHandler struct {
	catService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{catService: catService}
}

// List godoc
// GET /api/v1/categories
// Lists registered categories.
func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.catService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": cats})
}

// Create godoc
// POST /api/v1/admin/categories
// Registers a category. Admin only.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req model.CreateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cat, err := h.catService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadCategoryKey):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		case errors.Is(err, service.ErrCategoryExists):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"category": cat})
}

// Update godoc
// PUT /api/v1/admin/categories/:key
// Renames a category label. Admin only.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req model.UpdateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.catService.UpdateLabel(c.Request.Context(), c.Param("key"), req.Label); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Delete godoc
// DELETE /api/v1/admin/categories/:key
// Removes a category unless questions still reference it. Admin only.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.catService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrCategoryInUse):
			response.Fail(c, http.StatusConflict, response.ErrCategoryInUse)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
