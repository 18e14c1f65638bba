package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// События, отправляемые движком расчёта через уведомления.
const (
	EventBidPlaced        = "bid_placed"
	EventOfferReceived    = "offer_received"
	EventOutbid           = "outbid"
	EventListingSettled   = "listing_settled"
	EventClaimWon         = "claim_won"
	EventClaimLost        = "claim_lost"
	EventClaimPromoted    = "claim_promoted"
	EventPaymentCompleted = "payment_completed"
	EventClaimCancelled   = "claim_cancelled"
	EventNoActiveClaimant = "no_active_claimant"
	EventInterestShown    = "interest_shown"
)

// Notification описывает событие, отправленное пользователю.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
