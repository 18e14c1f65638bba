package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// ClaimRepository описывает хранилище ставок и предложений.
// Вид заявки выбирает таблицу; форма строк одинаковая.
//
// Методы, затрагивающие несколько строк (расчёт, продвижение), обязаны
// выполняться одной транзакцией: частично применённый расчёт недопустим.
type ClaimRepository interface {
	GetByID(ctx context.Context, kind valueobject.ClaimKind, id uuid.UUID) (*models.Claim, error)
	Insert(ctx context.Context, kind valueobject.ClaimKind, claim *models.Claim) error

	// ListByListing возвращает все заявки объявления, включая выбывшие.
	ListByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error)
	// ListActiveByListing возвращает заявки, участвующие в ранжировании.
	ListActiveByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error)
	ListByUser(ctx context.Context, kind valueobject.ClaimKind, userID uuid.UUID) ([]models.Claim, error)

	// UpsertBidAbove атомарно регистрирует ставку: внутри одной транзакции
	// перепроверяет текущий максимум по незавершённым ставкам и либо
	// обновляет активную ставку пользователя, либо вставляет новую.
	// Возвращает ErrBidTooLow, если сумма не превышает максимум.
	UpsertBidAbove(ctx context.Context, claim *models.Claim) error

	// ApplySettlement одной транзакцией назначает победителя, переводит
	// остальные активные заявки в проигравший статус и помечает объявление
	// проданным. winnerID == uuid.Nil означает расчёт без победителя.
	ApplySettlement(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID, winnerID uuid.UUID, winnerStatus, loserStatus valueobject.ClaimStatus) error

	// CompleteClaim одной транзакцией завершает заявку и фиксирует
	// объявление в статусе sold.
	CompleteClaim(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID) error

	// FailAndPromote одной транзакцией помечает заявку как failed и
	// продвигает следующую по ранжированию (amount DESC, created_at ASC)
	// в слот победителя. Возвращает продвинутую заявку или nil, если
	// активных заявок не осталось.
	FailAndPromote(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID, winnerStatus valueobject.ClaimStatus) (*models.Claim, error)
}

// InterestRepository описывает хранилище интересов к fixed-price объявлениям.
type InterestRepository interface {
	Create(ctx context.Context, interest *models.Interest) error
	Exists(ctx context.Context, listingID, userID uuid.UUID) (bool, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.Interest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error)
}
