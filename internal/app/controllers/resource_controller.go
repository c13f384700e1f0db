package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// ResourceService is the CRUD surface a ResourceController drives
type ResourceService[T any] interface {
	Kind() authz.ResourceKind
	List(ctx context.Context, actor *authz.Actor, page, size int) ([]*T, dto.PaginationInfo, error)
	Get(ctx context.Context, actor *authz.Actor, id int64) (*T, error)
	Create(ctx context.Context, actor *authz.Actor, item *T) (*T, error)
	Update(ctx context.Context, actor *authz.Actor, id int64, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, actor *authz.Actor, id int64) error
}

// ResourceController exposes one resource kind over HTTP
type ResourceController[T any] struct {
	service ResourceService[T]
}

// NewResourceController creates a new ResourceController
func NewResourceController[T any](service ResourceService[T]) *ResourceController[T] {
	return &ResourceController[T]{service: service}
}

// Register mounts the six CRUD routes on group
func (c *ResourceController[T]) Register(group *gin.RouterGroup) {
	group.GET("", c.List)
	group.POST("", c.Create)
	group.GET("/:id", c.Retrieve)
	group.PUT("/:id", c.Update)
	group.PATCH("/:id", c.PartialUpdate)
	group.DELETE("/:id", c.Delete)
}

// List returns one page of the caller's visible rows
// @Summary List resources
// @Description Returns the rows of a resource kind visible to the caller. Callers without list permission get an empty page.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param group path string true "Resource group, e.g. projects"
// @Param resource path string true "Resource kind, e.g. submissions"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Rows retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /{group}/{resource} [get]
func (c *ResourceController[T]) List(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	items, pagination, err := c.service.List(ctx.Request.Context(), middleware.GetActor(ctx), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success: true,
		Data: dto.PaginatedResponse{
			Items:      items,
			Pagination: pagination,
		},
		Timestamp: time.Now(),
	})
}

// Create stores a new row
// @Summary Create a resource
// @Description Creates a row. Creator defaults such as the caller's profile are applied when omitted.
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group path string true "Resource group"
// @Param resource path string true "Resource kind"
// @Param request body object true "Resource fields"
// @Success 201 {object} dto.APIResponse "Row created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /{group}/{resource} [post]
func (c *ResourceController[T]) Create(ctx *gin.Context) {
	item := new(T)
	if err := ctx.ShouldBindJSON(item); err != nil {
		respondInvalidBody(ctx, err)
		return
	}

	created, err := c.service.Create(ctx.Request.Context(), middleware.GetActor(ctx), item)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created, "Created successfully"))
}

// Retrieve returns one visible row
// @Summary Get a resource by ID
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param group path string true "Resource group"
// @Param resource path string true "Resource kind"
// @Param id path int true "Row ID"
// @Success 200 {object} dto.APIResponse "Row retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /{group}/{resource}/{id} [get]
func (c *ResourceController[T]) Retrieve(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	item, err := c.service.Get(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, ""))
}

// Update replaces a row; omitted fields are reset
// @Summary Replace a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group path string true "Resource group"
// @Param resource path string true "Resource kind"
// @Param id path int true "Row ID"
// @Param request body object true "Resource fields"
// @Success 200 {object} dto.APIResponse "Row updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /{group}/{resource}/{id} [put]
func (c *ResourceController[T]) Update(ctx *gin.Context) {
	c.update(ctx, true)
}

// PartialUpdate changes only the fields present in the body
// @Summary Partially update a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group path string true "Resource group"
// @Param resource path string true "Resource kind"
// @Param id path int true "Row ID"
// @Param request body object true "Fields to change"
// @Success 200 {object} dto.APIResponse "Row updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /{group}/{resource}/{id} [patch]
func (c *ResourceController[T]) PartialUpdate(ctx *gin.Context) {
	c.update(ctx, false)
}

func (c *ResourceController[T]) update(ctx *gin.Context, replace bool) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	body, err := ctx.GetRawData()
	if err != nil || !json.Valid(body) {
		respondInvalidBody(ctx, err)
		return
	}

	item, err := c.service.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, func(stored *T) error {
		if replace {
			var zero T
			*stored = zero
		}
		if err := json.Unmarshal(body, stored); err != nil {
			return apperrors.NewBadRequestError("Invalid request format")
		}
		return nil
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, "Updated successfully"))
}

// Delete removes a row
// @Summary Delete a resource
// @Tags resources
// @Security BearerAuth
// @Param group path string true "Resource group"
// @Param resource path string true "Resource kind"
// @Param id path int true "Row ID"
// @Success 204 "Row deleted"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /{group}/{resource}/{id} [delete]
func (c *ResourceController[T]) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := c.service.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// parseID reads the :id path parameter, writing a 400 when it is malformed
func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid ID")
		errorDetail = errorDetail.WithDetails("ID must be a positive integer")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func respondInvalidBody(ctx *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format")
	if err != nil {
		errorDetail = errorDetail.WithDetails(err.Error())
	}
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
