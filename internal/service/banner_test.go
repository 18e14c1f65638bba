package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

func TestBannerFor(t *testing.T) {
	winner := uuid.New()
	loser := uuid.New()
	failed := uuid.New()
	stranger := uuid.New()

	sold := &models.Listing{ID: uuid.New(), Status: valueobject.ListingStatusSold}
	active := &models.Listing{ID: uuid.New(), Status: valueobject.ListingStatusActive}

	claims := []models.Claim{
		{UserID: winner, Status: valueobject.ClaimStatusPaymentProcessing},
		{UserID: loser, Status: valueobject.ClaimStatusWaitingFinal},
		{UserID: failed, Status: valueobject.ClaimStatusFailed},
	}

	tests := []struct {
		name    string
		userID  uuid.UUID
		listing *models.Listing
		claims  []models.Claim
		want    Banner
	}{
		{"победитель ждёт оплату", winner, sold, claims, BannerWinnerPendingPayment},
		{"проигравший ждёт исход", loser, sold, claims, BannerWaitingForWinner},
		{"выбывшая заявка", failed, sold, claims, BannerClaimFailed},
		{"посторонний пользователь", stranger, sold, claims, BannerNone},
		{"активное объявление без баннера", winner, active, claims, BannerNone},
		{"нет заявок", winner, sold, nil, BannerNone},
		{"объявление не найдено", winner, nil, claims, BannerNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BannerFor(tt.userID, tt.listing, tt.claims))
		})
	}
}

func TestBannerFor_AcceptedOffer(t *testing.T) {
	buyer := uuid.New()
	sold := &models.Listing{ID: uuid.New(), Status: valueobject.ListingStatusSold}

	// У покупателя принятое и отклонённое предложения: показывается
	// баннер победителя независимо от порядка заявок.
	claims := []models.Claim{
		{UserID: buyer, Status: valueobject.ClaimStatusRejected},
		{UserID: buyer, Status: valueobject.ClaimStatusAccepted},
	}
	assert.Equal(t, BannerWinnerPendingPayment, BannerFor(buyer, sold, claims))
}

func TestBannerFor_CompletedClaimHidesBanner(t *testing.T) {
	buyer := uuid.New()
	sold := &models.Listing{ID: uuid.New(), Status: valueobject.ListingStatusSold}

	claims := []models.Claim{{UserID: buyer, Status: valueobject.ClaimStatusCompleted}}
	assert.Equal(t, BannerNone, BannerFor(buyer, sold, claims))
}
