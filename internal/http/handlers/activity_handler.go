package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// ActivityHandler отдаёт сводки покупателя и продавца.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler создаёт хэндлер.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// GetMyActivity обрабатывает GET /activity - мои ставки, предложения
// и интересы с плашками статуса.
func (h *ActivityHandler) GetMyActivity(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	activity, err := h.activity.GetBuyerActivity(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// GetDashboard обрабатывает GET /dashboard - мои объявления со
// счётчиками заявок и интересов.
func (h *ActivityHandler) GetDashboard(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	dashboard, err := h.activity.GetSellerDashboard(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
