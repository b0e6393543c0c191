package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/services"
	"handicapper/internal/utils"
)

type FollowHandler struct {
	followingService services.FollowingService
}

func NewFollowHandler(followingService services.FollowingService) *FollowHandler {
	return &FollowHandler{
		followingService: followingService,
	}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.followingService.Follow(c.Request.Context(), userID, c.Param("handicapperId")); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Followed successfully", gin.H{"following": true})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.followingService.Unfollow(c.Request.Context(), userID, c.Param("handicapperId")); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Unfollowed successfully", gin.H{"following": false})
}

func (h *FollowHandler) GetFollowStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	following := h.followingService.IsFollowing(c.Request.Context(), userID, c.Param("handicapperId"))
	utils.SuccessResponse(c, "Follow status retrieved successfully", gin.H{"following": following})
}

// GetFollowing lists the handicappers the caller follows
func (h *FollowHandler) GetFollowing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profiles, err := h.followingService.GetFollowing(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Following retrieved successfully", profiles, &utils.Meta{Count: len(profiles)})
}

func (h *FollowHandler) GetSuggestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := utils.GetLimit(c, utils.DefaultSuggestionLimit)

	profiles, err := h.followingService.GetSuggestedHandicappers(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Suggestions retrieved successfully", profiles, &utils.Meta{Count: len(profiles), Limit: limit})
}
