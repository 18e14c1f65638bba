package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// ClaimHandler предоставляет HTTP слой жизненного цикла заявок:
// ставки, предложения, расчёт объявления и оплата.
type ClaimHandler struct {
	settlement *service.SettlementService
	activity   *service.ActivityService
}

// NewClaimHandler создаёт хэндлер.
func NewClaimHandler(settlement *service.SettlementService, activity *service.ActivityService) *ClaimHandler {
	return &ClaimHandler{settlement: settlement, activity: activity}
}

// PlaceBid обрабатывает POST /listings/:id/bids.
func (h *ClaimHandler) PlaceBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := h.validateClaimRequest(req.Amount, req.Currency, req.Message); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claim, err := h.settlement.PlaceBid(c.Request.Context(), service.PlaceBidInput{
		ListingID: listingID,
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Message:   req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	h.activity.InvalidateFor(listingID)
	c.JSON(http.StatusCreated, claim)
}

// MakeOffer обрабатывает POST /listings/:id/offers.
func (h *ClaimHandler) MakeOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.MakeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := h.validateClaimRequest(req.Amount, req.Currency, req.Message); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claim, err := h.settlement.MakeOffer(c.Request.Context(), service.MakeOfferInput{
		ListingID: listingID,
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Message:   req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	h.activity.InvalidateFor(listingID)
	c.JSON(http.StatusCreated, claim)
}

// Settle обрабатывает POST /listings/:id/settle - владелец фиксирует
// итог торгов: победитель и проигравшие получают свои статусы.
func (h *ClaimHandler) Settle(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.settlement.Settle(c.Request.Context(), listingID, userID); err != nil {
		c.Error(err)
		return
	}

	h.activity.InvalidateFor(listingID)
	common.RespondSuccess(c, http.StatusOK, "объявление рассчитано", nil)
}

// ListClaims обрабатывает GET /listings/:id/claims.
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claims, err := h.settlement.ListingClaims(c.Request.Context(), listingID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// CompletePayment обрабатывает POST /claims/:kind/:id/complete.
// Повторный вызов для уже завершённой заявки безопасен.
func (h *ClaimHandler) CompletePayment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	kind, claimID, err := h.claimRef(c)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.settlement.CompletePayment(c.Request.Context(), kind, claimID, userID); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "оплата подтверждена", nil)
}

// CancelClaim обрабатывает POST /claims/:kind/:id/cancel.
// Отказ победителя передаёт слот следующей по рангу заявке.
func (h *ClaimHandler) CancelClaim(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	kind, claimID, err := h.claimRef(c)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.settlement.CancelClaim(c.Request.Context(), kind, claimID, userID); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "заявка отменена", nil)
}

// claimRef извлекает вид и идентификатор заявки из пути.
func (h *ClaimHandler) claimRef(c *gin.Context) (valueobject.ClaimKind, uuid.UUID, error) {
	kind := valueobject.ClaimKind(c.Param("kind"))
	if !kind.IsValid() {
		return "", uuid.Nil, fmt.Errorf("вид заявки должен быть %s или %s", valueobject.ClaimKindBid, valueobject.ClaimKindOffer)
	}

	claimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return "", uuid.Nil, err
	}
	return kind, claimID, nil
}

// validateClaimRequest проверяет общие поля ставки и предложения.
func (h *ClaimHandler) validateClaimRequest(amount float64, currencyCode string, message *string) error {
	if err := validation.ValidateAmount(amount); err != nil {
		return err
	}
	if currencyCode != "" {
		if err := validation.ValidateCurrencyCode(currencyCode); err != nil {
			return err
		}
	}
	if err := validation.ValidateClaimMessage(message); err != nil {
		return err
	}
	return nil
}
