package controllers

import (
	"net/http"

	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/services"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// UserController serves the caller's own identity
type UserController struct {
	authService *services.AuthService
}

// NewUserController creates a new UserController
func NewUserController(authService *services.AuthService) *UserController {
	return &UserController{authService: authService}
}

// Me returns the authenticated user
// @Summary Get my identity
// @Description Returns the caller's identity row with the id of its profile, or null when no profile exists yet
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "User retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "User no longer exists"
// @Router /users/users/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	actor := middleware.GetActor(ctx)
	if !actor.Authenticated() {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	user, err := c.authService.Me(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}
