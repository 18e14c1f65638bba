package dto

import (
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// ErrorResponse represents a standardized error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standardized success payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of register/login
type AuthResponse struct {
	User      *models.User       `json:"user"`
	TokenPair *service.TokenPair `json:"tokens"`
}

// ClaimView represents a claim with the amount converted to the
// viewer's display currency
type ClaimView struct {
	models.Claim
	AmountDisplay float64 `json:"amount_display"`
	Currency      string  `json:"currency"`
}

// ListingDetailResponse represents a listing with its claims and the
// per-viewer auction status banner
type ListingDetailResponse struct {
	*models.Listing
	Claims []ClaimView    `json:"claims,omitempty"`
	Banner service.Banner `json:"banner,omitempty"`
}
