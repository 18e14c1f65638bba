package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/currency"
	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// WSNotifier описывает интерфейс отправки уведомлений пользователям.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// SettlementService владеет жизненным циклом заявок и статусом объявления:
// приём ставок и предложений, назначение победителя по команде продавца,
// завершение и отмена оплаты с продвижением следующей заявки.
//
// Все проверки прав выполняются здесь: слою HTTP и клиентам
// идентификаторы на слово не доверяются.
type SettlementService struct {
	listings  domainrepo.ListingRepository
	claims    domainrepo.ClaimRepository
	converter *currency.Converter
	hub       WSNotifier
}

// NewSettlementService создаёт движок расчёта.
func NewSettlementService(listings domainrepo.ListingRepository, claims domainrepo.ClaimRepository, converter *currency.Converter) *SettlementService {
	return &SettlementService{
		listings:  listings,
		claims:    claims,
		converter: converter,
	}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *SettlementService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// PlaceBidInput описывает входные данные ставки.
type PlaceBidInput struct {
	ListingID uuid.UUID
	UserID    uuid.UUID
	Amount    float64
	// Валюта, в которой покупатель ввёл сумму. Перед сохранением
	// сумма нормализуется в USD.
	Currency string
	Message  *string
}

// PlaceBid регистрирует ставку аукциона. Сумма после нормализации должна
// строго превышать текущий максимум среди невыбывших ставок; активная
// ставка того же пользователя обновляется на месте. Проверка максимума
// атомарна на уровне хранилища.
func (s *SettlementService) PlaceBid(ctx context.Context, in PlaceBidInput) (*models.Claim, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}

	listing, err := s.getListing(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.SaleType != valueobject.SaleTypeAuction {
		return nil, apperror.New(apperror.ErrCodeValidation, "ставки принимаются только на аукционах")
	}
	if listing.Status != valueobject.ListingStatusActive {
		return nil, apperror.ErrListingNotActive
	}

	claim := &models.Claim{
		ListingID: in.ListingID,
		UserID:    in.UserID,
		Amount:    s.converter.ToReference(in.Amount, in.Currency),
		Message:   in.Message,
		Kind:      valueobject.ClaimKindBid,
	}

	// Лидер до регистрации ставки, чтобы уведомить его о перебитии.
	previousLeader := s.currentLeader(ctx, valueobject.ClaimKindBid, in.ListingID)

	if err := s.claims.UpsertBidAbove(ctx, claim); err != nil {
		if errors.Is(err, repository.ErrBidTooLow) {
			return nil, apperror.New(apperror.ErrCodeValidation,
				fmt.Sprintf("ставка должна превышать текущий максимум (%s)",
					s.formatAmount(s.currentHighest(ctx, valueobject.ClaimKindBid, in.ListingID), in.Currency)))
		}
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить ставку")
	}

	s.notify(listing.OwnerID, models.EventBidPlaced, claimEventData(listing, claim))
	if previousLeader != nil && previousLeader.UserID != in.UserID {
		s.notify(previousLeader.UserID, models.EventOutbid, claimEventData(listing, claim))
	}

	return claim, nil
}

// MakeOfferInput описывает входные данные предложения.
type MakeOfferInput struct {
	ListingID uuid.UUID
	UserID    uuid.UUID
	Amount    float64
	Currency  string
	Message   *string
}

// MakeOffer регистрирует предложение договорной продажи. Каждое предложение
// сохраняется отдельной строкой, минимального шага нет.
func (s *SettlementService) MakeOffer(ctx context.Context, in MakeOfferInput) (*models.Claim, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}

	listing, err := s.getListing(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.SaleType != valueobject.SaleTypeOffer {
		return nil, apperror.New(apperror.ErrCodeValidation, "предложения принимаются только на договорной продаже")
	}
	if listing.Status != valueobject.ListingStatusActive {
		return nil, apperror.ErrListingNotActive
	}

	claim := &models.Claim{
		ListingID: in.ListingID,
		UserID:    in.UserID,
		Amount:    s.converter.ToReference(in.Amount, in.Currency),
		Message:   in.Message,
		Status:    valueobject.ClaimStatusOpen,
		Kind:      valueobject.ClaimKindOffer,
	}
	if err := s.claims.Insert(ctx, valueobject.ClaimKindOffer, claim); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
	}

	s.notify(listing.OwnerID, models.EventOfferReceived, claimEventData(listing, claim))

	return claim, nil
}

// Settle завершает торги по команде продавца: заявки ранжируются по
// сумме (при равенстве побеждает более ранняя), верхняя занимает слот
// победителя, остальные переводятся в проигравший статус, объявление
// помечается проданным. Пустой набор заявок также завершает торги.
// Все изменения применяются одной транзакцией.
func (s *SettlementService) Settle(ctx context.Context, listingID, callerID uuid.UUID) error {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(callerID) {
		return apperror.ErrForbidden
	}
	if listing.Status != valueobject.ListingStatusActive {
		return apperror.ErrListingNotActive
	}
	kind, err := valueobject.ForSaleType(listing.SaleType)
	if err != nil {
		return err
	}

	claims, err := s.claims.ListActiveByListing(ctx, kind, listingID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}
	rankClaims(claims)

	winnerID := uuid.Nil
	if len(claims) > 0 {
		winnerID = claims[0].ID
	}

	if err := s.claims.ApplySettlement(ctx, kind, listingID, winnerID, kind.WinnerStatus(), kind.LoserStatus()); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить торги")
	}

	for i := range claims {
		event := models.EventClaimLost
		if claims[i].ID == winnerID {
			event = models.EventClaimWon
		}
		s.notify(claims[i].UserID, event, claimEventData(listing, &claims[i]))
	}
	s.notify(listing.OwnerID, models.EventListingSettled, map[string]interface{}{
		"listing_id": listing.ID,
		"title":      listing.Title,
		"claims":     len(claims),
	})

	return nil
}

// CompletePayment завершает оплату победившей заявки. Повторный вызов для
// уже завершённой заявки - no-op. Заявка и объявление фиксируются одной
// транзакцией.
func (s *SettlementService) CompletePayment(ctx context.Context, kind valueobject.ClaimKind, claimID, callerID uuid.UUID) error {
	claim, err := s.getClaim(ctx, kind, claimID)
	if err != nil {
		return err
	}
	if !claim.IsOwnedBy(callerID) {
		return apperror.ErrForbidden
	}
	if claim.Status == valueobject.ClaimStatusCompleted {
		return nil
	}
	if !claim.Status.IsWinnerSlot() {
		return apperror.New(apperror.ErrCodeBadRequest, "оплатить можно только заявку, ожидающую оплаты")
	}

	if err := s.claims.CompleteClaim(ctx, kind, claimID, claim.ListingID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить оплату")
	}

	if listing, lerr := s.getListing(ctx, claim.ListingID); lerr == nil {
		s.notify(listing.OwnerID, models.EventPaymentCompleted, claimEventData(listing, claim))
	}

	return nil
}

// CancelClaim отменяет оплату победившей заявки: заявка выбывает (failed),
// следующая по ранжированию продвигается в слот победителя. Если активных
// заявок не осталось, объявление остаётся sold без претендента - возврат
// в active не выполняется, продавцу отправляется уведомление.
func (s *SettlementService) CancelClaim(ctx context.Context, kind valueobject.ClaimKind, claimID, callerID uuid.UUID) error {
	claim, err := s.getClaim(ctx, kind, claimID)
	if err != nil {
		return err
	}
	if !claim.IsOwnedBy(callerID) {
		return apperror.ErrForbidden
	}
	if !claim.Status.IsWinnerSlot() {
		return apperror.New(apperror.ErrCodeBadRequest, "отменить можно только заявку, ожидающую оплаты")
	}

	promoted, err := s.claims.FailAndPromote(ctx, kind, claimID, claim.ListingID, kind.WinnerStatus())
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отменить заявку")
	}

	listing, lerr := s.getListing(ctx, claim.ListingID)
	if lerr != nil {
		return nil
	}
	if promoted != nil {
		s.notify(promoted.UserID, models.EventClaimPromoted, claimEventData(listing, promoted))
		s.notify(listing.OwnerID, models.EventClaimCancelled, claimEventData(listing, claim))
	} else {
		s.notify(listing.OwnerID, models.EventNoActiveClaimant, map[string]interface{}{
			"listing_id": listing.ID,
			"title":      listing.Title,
		})
	}

	return nil
}

// ListingClaims возвращает заявки объявления в порядке ранжирования
// (для отображения списка ставок или предложений).
func (s *SettlementService) ListingClaims(ctx context.Context, listingID uuid.UUID) ([]models.Claim, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	kind, err := valueobject.ForSaleType(listing.SaleType)
	if err != nil {
		return nil, err
	}
	claims, err := s.claims.ListByListing(ctx, kind, listingID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}
	return claims, nil
}

func (s *SettlementService) getListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	return listing, nil
}

func (s *SettlementService) getClaim(ctx context.Context, kind valueobject.ClaimKind, id uuid.UUID) (*models.Claim, error) {
	claim, err := s.claims.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			return nil, apperror.ErrClaimNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return claim, nil
}

// currentLeader возвращает верхнюю заявку ранжирования или nil.
func (s *SettlementService) currentLeader(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) *models.Claim {
	claims, err := s.claims.ListActiveByListing(ctx, kind, listingID)
	if err != nil || len(claims) == 0 {
		return nil
	}
	rankClaims(claims)
	return &claims[0]
}

// currentHighest возвращает максимальную сумму среди невыбывших заявок в USD.
func (s *SettlementService) currentHighest(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) float64 {
	if leader := s.currentLeader(ctx, kind, listingID); leader != nil {
		return leader.Amount
	}
	return 0
}

// formatAmount переводит сумму из USD в валюту пользователя для сообщения.
func (s *SettlementService) formatAmount(amountUSD float64, currencyCode string) string {
	converted := s.converter.Convert(amountUSD, currency.ReferenceCurrency, currencyCode)
	if currencyCode == "" {
		currencyCode = currency.ReferenceCurrency
	}
	return fmt.Sprintf("%.2f %s", converted, currencyCode)
}

func (s *SettlementService) notify(userID uuid.UUID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, data); err != nil {
		logger.WithComponent("settlement").Warnf("не удалось отправить уведомление %s: %v", event, err)
	}
}

// rankClaims сортирует заявки по правилу ранжирования движка:
// сумма по убыванию, при равенстве побеждает более ранняя заявка.
func rankClaims(claims []models.Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		if claims[i].Amount != claims[j].Amount {
			return claims[i].Amount > claims[j].Amount
		}
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.Before(claims[j].CreatedAt)
		}
		return claims[i].ID.String() < claims[j].ID.String()
	})
}

func claimEventData(listing *models.Listing, claim *models.Claim) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": listing.ID,
		"title":      listing.Title,
		"claim_id":   claim.ID,
		"amount":     claim.Amount,
		"status":     claim.Status,
	}
}

func validateAmount(amount float64) error {
	if err := validation.ValidateAmount(amount); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	return nil
}
