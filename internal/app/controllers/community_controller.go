package controllers

import (
	"net/http"

	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/services"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CommunityController handles community actions outside plain CRUD
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// ToggleLike likes or unlikes a post
// @Summary Toggle a like on a post
// @Description Adds the caller's like to the post, or removes it when already present
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse} "Like toggled"
// @Failure 400 {object} dto.ErrorResponse "Invalid post ID"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /community/posts/{id}/like [post]
func (c *CommunityController) ToggleLike(ctx *gin.Context) {
	postID, ok := parseID(ctx)
	if !ok {
		return
	}

	post, liked, err := c.communityService.ToggleLike(ctx.Request.Context(), middleware.GetActor(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LikeResponse{
		PostID:    post.ID,
		Liked:     liked,
		LikeCount: len(post.Likes),
	}, message))
}
