package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// Banner - подсказка о состоянии торгов для конкретного пользователя.
type Banner string

const (
	// BannerNone - баннер не показывается.
	BannerNone Banner = ""
	// BannerWinnerPendingPayment - пользователь победил и должен оплатить.
	BannerWinnerPendingPayment Banner = "winner_pending_payment"
	// BannerWaitingForWinner - пользователь ждёт исхода оплаты победителя.
	BannerWaitingForWinner Banner = "waiting_for_winner"
	// BannerClaimFailed - заявка пользователя выбыла.
	BannerClaimFailed Banner = "claim_failed"
)

// BannerFor вычисляет баннер статуса торгов для пользователя. Состояние
// выводится из статусов заявок на каждый запрос и нигде не хранится.
//
// Баннер показывается только на проданном объявлении и только участнику
// торгов; завершённая оплата и отклонённое предложение баннера не дают.
func BannerFor(userID uuid.UUID, listing *models.Listing, claims []models.Claim) Banner {
	if listing == nil || listing.Status != valueobject.ListingStatusSold {
		return BannerNone
	}
	// У пользователя может быть несколько предложений на одном объявлении;
	// берётся самое сильное состояние.
	banner := BannerNone
	for i := range claims {
		if claims[i].UserID != userID {
			continue
		}
		switch {
		case claims[i].Status.IsWinnerSlot():
			return BannerWinnerPendingPayment
		case claims[i].Status == valueobject.ClaimStatusWaitingFinal:
			banner = BannerWaitingForWinner
		case claims[i].Status == valueobject.ClaimStatusFailed && banner == BannerNone:
			banner = BannerClaimFailed
		}
	}
	return banner
}
