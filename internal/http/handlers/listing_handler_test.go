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

func TestListingHandler_ShowInterest_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ListingHandler{}
	r.POST("/listings/:id/interest", handler.ShowInterest)

	listingID := uuid.New()
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/interest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListingHandler_ShowInterest_RejectsOverlongMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withAuthenticatedUser(r)
	handler := &ListingHandler{}
	r.POST("/listings/:id/interest", handler.ShowInterest)

	listingID := uuid.New()
	body := `{"message": "` + strings.Repeat("а", 2001) + `"}`
	req, _ := http.NewRequest("POST", "/listings/"+listingID.String()+"/interest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_GetListing_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ListingHandler{}
	r.GET("/listings/:id", handler.GetListing)

	req, _ := http.NewRequest("GET", "/listings/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
