package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/currency"
	"github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// ListingHandler предоставляет HTTP слой для объявлений и интересов.
type ListingHandler struct {
	listings   *service.ListingService
	settlement *service.SettlementService
	converter  *currency.Converter
	tokens     *service.TokenManager
}

// NewListingHandler создаёт хэндлер.
func NewListingHandler(listings *service.ListingService, settlement *service.SettlementService, converter *currency.Converter, tokens *service.TokenManager) *ListingHandler {
	return &ListingHandler{
		listings:   listings,
		settlement: settlement,
		converter:  converter,
		tokens:     tokens,
	}
}

// CreateListing обрабатывает POST /listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.CreateListing(c.Request.Context(), service.CreateListingInput{
		OwnerID:     userID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		SaleType:    req.SaleType,
		Location:    req.Location,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListing обрабатывает GET /listings/:id.
// Для конкурентных объявлений отдаёт заявки и плашку статуса
// в валюте отображения запрашивающего.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := dto.ListingDetailResponse{Listing: listing}

	if listing.SaleType.IsCompetitive() {
		claims, err := h.settlement.ListingClaims(c.Request.Context(), listingID)
		if err != nil {
			c.Error(err)
			return
		}

		code := h.displayCurrency(c)
		views := make([]dto.ClaimView, 0, len(claims))
		for _, claim := range claims {
			views = append(views, dto.ClaimView{
				Claim:         claim,
				AmountDisplay: h.converter.Convert(claim.Amount, currency.ReferenceCurrency, code),
				Currency:      code,
			})
		}
		resp.Claims = views

		if viewerID := h.viewerID(c); viewerID != uuid.Nil {
			resp.Banner = service.BannerFor(viewerID, listing, claims)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListListings обрабатывает GET /listings.
func (h *ListingHandler) ListListings(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	filter := repository.ListingFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("category"); raw != "" {
		category, err := valueobject.NewListingCategory(raw)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		filter.Category = category
	}
	if raw := c.Query("sale_type"); raw != "" {
		saleType, err := valueobject.NewSaleType(raw)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		filter.SaleType = saleType
	}
	if raw := c.Query("status"); raw != "" {
		status, err := valueobject.NewListingStatus(raw)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		filter.Status = status
	}

	listings, err := h.listings.ListListings(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "limit": limit, "offset": offset})
}

// ListMyListings обрабатывает GET /listings/my.
func (h *ListingHandler) ListMyListings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	listings, err := h.listings.ListListings(c.Request.Context(), repository.ListingFilter{
		OwnerID: userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "limit": limit, "offset": offset})
}

// UpdateListing обрабатывает PUT /listings/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
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

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.UpdateListing(c.Request.Context(), service.UpdateListingInput{
		ListingID:   listingID,
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Location:    req.Location,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CloseListing обрабатывает POST /listings/:id/close.
func (h *ListingHandler) CloseListing(c *gin.Context) {
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

	if err := h.listings.CloseListing(c.Request.Context(), listingID, userID); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "объявление закрыто", nil)
}

// DeleteListing обрабатывает DELETE /listings/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
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

	if err := h.listings.DeleteListing(c.Request.Context(), listingID, userID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ShowInterest обрабатывает POST /listings/:id/interest.
func (h *ListingHandler) ShowInterest(c *gin.Context) {
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

	var req dto.ShowInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateClaimMessage(req.Message); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	interest, err := h.listings.ShowInterest(c.Request.Context(), listingID, userID, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, interest)
}

// ListInterests обрабатывает GET /listings/:id/interests - только для владельца.
func (h *ListingHandler) ListInterests(c *gin.Context) {
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

	interests, err := h.listings.ListingInterests(c.Request.Context(), listingID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

// ListMyInterests обрабатывает GET /interests/my.
func (h *ListingHandler) ListMyInterests(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	interests, err := h.listings.MyInterests(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

// displayCurrency возвращает валюту отображения из query параметра.
func (h *ListingHandler) displayCurrency(c *gin.Context) string {
	code := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	if code == "" || validation.ValidateCurrencyCode(code) != nil {
		return currency.ReferenceCurrency
	}
	return code
}

// viewerID извлекает пользователя из Bearer заголовка, если он передан.
// Детальная карточка публична, но плашка статуса персональная.
func (h *ListingHandler) viewerID(c *gin.Context) uuid.UUID {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return uuid.Nil
	}

	userID, err := h.tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return uuid.Nil
	}
	return userID
}
