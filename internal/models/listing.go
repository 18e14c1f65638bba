package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
)

// Listing описывает объявление: товар, вакансию или услугу.
type Listing struct {
	ID          uuid.UUID                   `db:"id" json:"id"`
	OwnerID     uuid.UUID                   `db:"owner_id" json:"owner_id"`
	Category    valueobject.ListingCategory `db:"category" json:"category"`
	Title       string                      `db:"title" json:"title"`
	Description string                      `db:"description" json:"description"`
	// Цена в USD. Для аукционов это стартовый ориентир, для fixed — цена продажи.
	Price     *float64                  `db:"price" json:"price,omitempty"`
	SaleType  valueobject.SaleType      `db:"sale_type" json:"sale_type"`
	Status    valueobject.ListingStatus `db:"status" json:"status"`
	Location  *string                   `db:"location" json:"location,omitempty"`
	CreatedAt time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt time.Time                 `db:"updated_at" json:"updated_at"`

	Photos []ListingPhoto `json:"photos,omitempty"`
}

// IsOwnedBy проверяет владельца объявления.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// ListingPhoto описывает изображение, прикреплённое к объявлению.
type ListingPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Interest фиксирует интерес покупателя к fixed-price объявлению.
// Один пользователь может проявить интерес один раз.
type Interest struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Message   *string   `db:"message" json:"message,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
