package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
)

// Claim представляет конкурентную заявку на объявление: ставку аукциона
// или предложение договорной продажи. Обе таблицы имеют одинаковую форму,
// вид различается полем Kind и не хранится в строке.
type Claim struct {
	ID        uuid.UUID               `db:"id" json:"id"`
	ListingID uuid.UUID               `db:"listing_id" json:"listing_id"`
	UserID    uuid.UUID               `db:"user_id" json:"user_id"`
	// Сумма в USD (референсная валюта), независимо от валюты отображения.
	Amount    float64                 `db:"amount" json:"amount"`
	Message   *string                 `db:"message" json:"message,omitempty"`
	Status    valueobject.ClaimStatus `db:"status" json:"status"`
	CreatedAt time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt time.Time               `db:"updated_at" json:"updated_at"`

	Kind valueobject.ClaimKind `db:"-" json:"kind"`
}

// IsOwnedBy проверяет автора заявки.
func (c *Claim) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}

// IsActive сообщает, участвует ли заявка в ранжировании.
// Проигравшие (failed/rejected) и завершённые заявки выбывают.
func (c *Claim) IsActive() bool {
	return !c.Status.IsTerminal()
}
