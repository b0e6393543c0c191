package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/models"
	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

type PickHandler struct {
	pickService services.PickService
}

func NewPickHandler(pickService services.PickService) *PickHandler {
	return &PickHandler{
		pickService: pickService,
	}
}

// CreatePick posts a new pick for the calling handicapper
func (h *PickHandler) CreatePick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.PickCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	pick, err := h.pickService.CreatePick(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Pick created successfully", pick)
}

func (h *PickHandler) GetPick(c *gin.Context) {
	pick, err := h.pickService.GetPick(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pick retrieved successfully", pick)
}

// GetPicks lists picks, newest first, narrowed by the query filters
func (h *PickHandler) GetPicks(c *gin.Context) {
	filter := models.PickFilter{
		HandicapperID: c.Query("handicapper_id"),
		Sport:         c.Query("sport"),
		IsPaid:        utils.GetOptionalBool(c, "is_paid"),
		IsFree:        utils.GetOptionalBool(c, "is_free"),
		Limit:         utils.GetLimit(c, utils.DefaultPageSize),
	}
	if status := models.PickStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			utils.BadRequestResponse(c, "Invalid pick status")
			return
		}
		filter.Status = status
	}

	picks, err := h.pickService.GetPicks(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Picks retrieved successfully", picks, &utils.Meta{Count: len(picks), Limit: filter.Limit})
}

func (h *PickHandler) GetFollowingPicks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := utils.GetLimit(c, utils.DefaultPageSize)

	picks, err := h.pickService.GetFollowingPicks(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Picks retrieved successfully", picks, &utils.Meta{Count: len(picks), Limit: limit})
}

func (h *PickHandler) GetTopRatedPicks(c *gin.Context) {
	limit := utils.GetLimit(c, utils.DefaultPageSize)

	picks, err := h.pickService.GetTopRatedPicks(c.Request.Context(), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Picks retrieved successfully", picks, &utils.Meta{Count: len(picks), Limit: limit})
}

// UpdatePickStatus grades a pick
func (h *PickHandler) UpdatePickStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.PickStatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidatePickStatusUpdate(&req); err != nil {
		utils.HandleError(c, err)
		return
	}

	pick, err := h.pickService.UpdatePickStatus(c.Request.Context(), userID, c.Param("id"), models.PickStatus(req.Status))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pick status updated successfully", pick)
}

func (h *PickHandler) DeletePick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.pickService.DeletePick(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pick deleted successfully", nil)
}

func (h *PickHandler) LikePick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pick, err := h.pickService.LikePick(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pick liked successfully", pick)
}

func (h *PickHandler) SharePick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pick, err := h.pickService.SharePick(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pick shared successfully", pick)
}
