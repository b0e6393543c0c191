package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/services"
	"handicapper/internal/utils"
)

type HandicapperHandler struct {
	userService      services.UserService
	pickService      services.PickService
	purchaseService  services.PurchaseService
	followingService services.FollowingService
}

func NewHandicapperHandler(
	userService services.UserService,
	pickService services.PickService,
	purchaseService services.PurchaseService,
	followingService services.FollowingService,
) *HandicapperHandler {
	return &HandicapperHandler{
		userService:      userService,
		pickService:      pickService,
		purchaseService:  purchaseService,
		followingService: followingService,
	}
}

// ListHandicappers searches handicapper profiles
func (h *HandicapperHandler) ListHandicappers(c *gin.Context) {
	proOnly, _ := strconv.ParseBool(c.Query("pro"))
	query := interfaces.HandicapperQuery{
		Search:  c.Query("search"),
		Sport:   c.Query("sport"),
		ProOnly: proOnly,
		Limit:   utils.GetLimit(c, utils.DefaultPageSize),
	}

	profiles, err := h.userService.ListHandicappers(c.Request.Context(), c.GetString(utils.ContextUserID), query)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Handicappers retrieved successfully", profiles, &utils.Meta{Count: len(profiles), Limit: query.Limit})
}

func (h *HandicapperHandler) GetHandicapper(c *gin.Context) {
	handicapper, err := h.userService.GetHandicapper(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Handicapper retrieved successfully", handicapper.ToPublicProfile())
}

func (h *HandicapperHandler) GetPerformance(c *gin.Context) {
	performance, err := h.pickService.GetHandicapperPerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Performance retrieved successfully", performance)
}

// GetEarnings is visible to the handicapper themselves and to admins
func (h *HandicapperHandler) GetEarnings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	handicapperID := c.Param("id")
	if userID != handicapperID && !isAdmin(c) {
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "You can only view your own earnings")
		return
	}

	earnings, err := h.purchaseService.GetHandicapperEarnings(c.Request.Context(), handicapperID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Earnings retrieved successfully", earnings)
}

func (h *HandicapperHandler) GetFollowers(c *gin.Context) {
	followers, err := h.followingService.GetFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Followers retrieved successfully", followers, &utils.Meta{Count: len(followers)})
}

// GetFollowCounts returns follower and following totals for a profile
func (h *HandicapperHandler) GetFollowCounts(c *gin.Context) {
	id := c.Param("id")

	utils.SuccessResponse(c, "Counts retrieved successfully", gin.H{
		"followers": h.followingService.GetFollowersCount(c.Request.Context(), id),
		"following": h.followingService.GetFollowingCount(c.Request.Context(), id),
	})
}
