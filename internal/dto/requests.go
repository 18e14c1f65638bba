package dto

// RegisterRequest represents the request to register a new user
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to refresh a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents the request to revoke a refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents the request to update profile fields
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Currency    *string `json:"currency"`
}

// CreateListingRequest represents the request to create a listing
type CreateListingRequest struct {
	Category    string   `json:"category" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	SaleType    string   `json:"sale_type" binding:"required"`
	Location    *string  `json:"location"`
}

// UpdateListingRequest represents the request to update a listing
type UpdateListingRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	Location    *string  `json:"location"`
}

// PlaceBidRequest represents the request to place an auction bid
type PlaceBidRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
	Message  *string `json:"message"`
}

// MakeOfferRequest represents the request to make an offer
type MakeOfferRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
	Message  *string `json:"message"`
}

// ShowInterestRequest represents the request to express interest in a listing
type ShowInterestRequest struct {
	Message *string `json:"message"`
}
