package valueobject

import "github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"

// ClaimStatus описывает жизненный цикл ставки или предложения.
// Пустая строка означает открытую заявку, по которой победитель
// ещё не назначался.
type ClaimStatus string

const (
	ClaimStatusOpen              ClaimStatus = ""
	ClaimStatusPaymentProcessing ClaimStatus = "payment_processing"
	ClaimStatusWaitingFinal      ClaimStatus = "waiting_for_final_payment"
	ClaimStatusAccepted          ClaimStatus = "accepted"
	ClaimStatusRejected          ClaimStatus = "rejected"
	ClaimStatusCompleted         ClaimStatus = "completed"
	ClaimStatusFailed            ClaimStatus = "failed"
)

func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusOpen, ClaimStatusPaymentProcessing, ClaimStatusWaitingFinal,
		ClaimStatusAccepted, ClaimStatusRejected, ClaimStatusCompleted, ClaimStatusFailed:
		return true
	}
	return false
}

// IsTerminal сообщает, финален ли статус для самой заявки.
// failed не мешает продвижению других заявок, но сама заявка
// больше не участвует в ранжировании.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusCompleted || s == ClaimStatusFailed || s == ClaimStatusRejected
}

// IsWinnerSlot сообщает, удерживает ли заявка слот текущего победителя.
func (s ClaimStatus) IsWinnerSlot() bool {
	return s == ClaimStatusPaymentProcessing || s == ClaimStatusAccepted
}

func NewClaimStatus(status string) (ClaimStatus, error) {
	s := ClaimStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}

// ClaimKind различает ставки аукциона и предложения договорной продажи.
// Таблицы структурно одинаковы, различается словарь статусов и правило
// повторной подачи от одного пользователя.
type ClaimKind string

const (
	ClaimKindBid   ClaimKind = "bid"
	ClaimKindOffer ClaimKind = "offer"
)

func (k ClaimKind) IsValid() bool {
	return k == ClaimKindBid || k == ClaimKindOffer
}

// Table возвращает имя таблицы хранения для данного вида заявок.
func (k ClaimKind) Table() string {
	if k == ClaimKindOffer {
		return "offers"
	}
	return "bids"
}

// Singleton сообщает, хранится ли на пользователя одна активная заявка.
// Ставки обновляются на месте, предложения копятся как журнал.
func (k ClaimKind) Singleton() bool {
	return k == ClaimKindBid
}

// RequiresOutbid сообщает, должна ли новая заявка строго превышать
// текущий максимум. Для предложений минимального шага нет.
func (k ClaimKind) RequiresOutbid() bool {
	return k == ClaimKindBid
}

// WinnerStatus возвращает статус заявки, занявшей слот победителя.
func (k ClaimKind) WinnerStatus() ClaimStatus {
	if k == ClaimKindOffer {
		return ClaimStatusAccepted
	}
	return ClaimStatusPaymentProcessing
}

// LoserStatus возвращает статус остальных заявок после расчёта.
func (k ClaimKind) LoserStatus() ClaimStatus {
	if k == ClaimKindOffer {
		return ClaimStatusRejected
	}
	return ClaimStatusWaitingFinal
}

// ForSaleType возвращает вид заявки, соответствующий типу продажи.
func ForSaleType(t SaleType) (ClaimKind, error) {
	switch t {
	case SaleTypeAuction:
		return ClaimKindBid, nil
	case SaleTypeOffer:
		return ClaimKindOffer, nil
	}
	return "", apperror.New(apperror.ErrCodeBadRequest, "тип продажи не поддерживает заявки")
}
