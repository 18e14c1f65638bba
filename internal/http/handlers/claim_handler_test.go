package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func withAuthenticatedUser(r *gin.Engine) uuid.UUID {
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	return userID
}

func TestClaimHandler_PlaceBid_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ClaimHandler{}
	r.POST("/listings/:id/bids", handler.PlaceBid)

	listingID := uuid.New()
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/bids", strings.NewReader(`{"amount": 10}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimHandler_PlaceBid_InvalidListingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ClaimHandler{}
	r.POST("/listings/:id/bids", handler.PlaceBid)

	req, _ := http.NewRequest("POST", "/listings/not-a-uuid/bids", strings.NewReader(`{"amount": 10}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_PlaceBid_RejectsNegativeAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ClaimHandler{}
	r.POST("/listings/:id/bids", handler.PlaceBid)

	listingID := uuid.New()
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/bids", strings.NewReader(`{"amount": -5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_PlaceBid_RejectsOverlongMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ClaimHandler{}
	r.POST("/listings/:id/bids", handler.PlaceBid)

	listingID := uuid.New()
	body := `{"amount": 10, "message": "` + strings.Repeat("а", 2001) + `"}`
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/bids", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_CompletePayment_RejectsUnknownKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ClaimHandler{}
	r.POST("/claims/:kind/:id/complete", handler.CompletePayment)

	claimID := uuid.New()
	req, _ := http.NewRequest("POST", "/claims/lease/"+claimID.String()+"/complete", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_CancelClaim_InvalidClaimID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ClaimHandler{}
	r.POST("/claims/:kind/:id/cancel", handler.CancelClaim)

	req, _ := http.NewRequest("POST", "/claims/bid/not-a-uuid/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_Settle_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ClaimHandler{}
	r.POST("/listings/:id/settle", handler.Settle)

	listingID := uuid.New()
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/settle", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
