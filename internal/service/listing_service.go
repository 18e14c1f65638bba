package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/currency"
	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// PhotoLister описывает минимальный контракт получения фотографий объявления.
type PhotoLister interface {
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingPhoto, error)
}

// ListingService содержит бизнес-логику работы с объявлениями и интересами.
type ListingService struct {
	listings  domainrepo.ListingRepository
	interests domainrepo.InterestRepository
	photos    PhotoLister
	converter *currency.Converter
	hub       WSNotifier
}

// NewListingService создаёт сервис объявлений.
func NewListingService(listings domainrepo.ListingRepository, interests domainrepo.InterestRepository, photos PhotoLister, converter *currency.Converter) *ListingService {
	return &ListingService{
		listings:  listings,
		interests: interests,
		photos:    photos,
		converter: converter,
	}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *ListingService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateListingInput описывает входные данные объявления.
type CreateListingInput struct {
	OwnerID     uuid.UUID
	Category    string
	Title       string
	Description string
	Price       *float64
	// Валюта введённой цены; перед сохранением цена нормализуется в USD.
	Currency string
	SaleType string
	Location *string
}

// UpdateListingInput описывает изменяемые поля объявления.
type UpdateListingInput struct {
	ListingID   uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Price       *float64
	Currency    string
	Location    *string
}

// CreateListing создаёт объявление и возвращает его.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	category, err := valueobject.NewListingCategory(in.Category)
	if err != nil {
		return nil, err
	}
	saleType, err := valueobject.NewSaleType(in.SaleType)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateListingTitle(in.Title); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidateListingDescription(in.Description); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}

	// Fixed-price продажа без цены не имеет смысла; для торгов цена -
	// необязательный ориентир.
	if saleType == valueobject.SaleTypeFixed && in.Price == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "для продажи по фиксированной цене нужна цена")
	}

	listing := &models.Listing{
		OwnerID:     in.OwnerID,
		Category:    category,
		Title:       in.Title,
		Description: in.Description,
		SaleType:    saleType,
		Status:      valueobject.ListingStatusActive,
		Location:    in.Location,
	}
	if in.Price != nil {
		normalized := s.converter.ToReference(*in.Price, in.Currency)
		listing.Price = &normalized
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}

	return listing, nil
}

// GetListing возвращает объявление с фотографиями.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}

	if s.photos != nil {
		if photos, perr := s.photos.ListByListing(ctx, id); perr == nil {
			listing.Photos = photos
		}
	}

	return listing, nil
}

// ListListings возвращает объявления по фильтру.
func (s *ListingService) ListListings(ctx context.Context, filter domainrepo.ListingFilter) ([]models.Listing, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	listings, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления")
	}
	return listings, nil
}

// UpdateListing обновляет объявление владельца. Проданные и закрытые
// объявления не редактируются.
func (s *ListingService) UpdateListing(ctx context.Context, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.GetListing(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(in.OwnerID) {
		return nil, apperror.ErrForbidden
	}
	if listing.Status != valueobject.ListingStatusActive {
		return nil, apperror.ErrListingNotActive
	}

	if err := validation.ValidateListingTitle(in.Title); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidateListingDescription(in.Description); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidatePrice(in.Price); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}

	listing.Title = in.Title
	listing.Description = in.Description
	listing.Location = in.Location
	listing.Price = nil
	if in.Price != nil {
		normalized := s.converter.ToReference(*in.Price, in.Currency)
		listing.Price = &normalized
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить объявление")
	}

	return listing, nil
}

// CloseListing снимает активное объявление с публикации без расчёта.
func (s *ListingService) CloseListing(ctx context.Context, listingID, ownerID uuid.UUID) error {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(ownerID) {
		return apperror.ErrForbidden
	}
	if !listing.Status.CanTransitionTo(valueobject.ListingStatusClosed) {
		return apperror.ErrListingNotActive
	}

	if err := s.listings.SetStatus(ctx, listingID, valueobject.ListingStatusClosed); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть объявление")
	}
	return nil
}

// DeleteListing удаляет объявление владельца. Проданное объявление
// удалить нельзя: по нему идёт оплата.
func (s *ListingService) DeleteListing(ctx context.Context, listingID, ownerID uuid.UUID) error {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(ownerID) {
		return apperror.ErrForbidden
	}
	if listing.Status == valueobject.ListingStatusSold {
		return apperror.New(apperror.ErrCodeBadRequest, "нельзя удалить проданное объявление")
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить объявление")
	}
	return nil
}

// ShowInterest фиксирует интерес покупателя к fixed-price объявлению.
func (s *ListingService) ShowInterest(ctx context.Context, listingID, userID uuid.UUID, message *string) (*models.Interest, error) {
	if err := validation.ValidateClaimMessage(message); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}

	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SaleType != valueobject.SaleTypeFixed {
		return nil, apperror.New(apperror.ErrCodeValidation, "интерес доступен только для продажи по фиксированной цене")
	}
	if listing.Status != valueobject.ListingStatusActive {
		return nil, apperror.ErrListingNotActive
	}
	if listing.IsOwnedBy(userID) {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя проявить интерес к своему объявлению")
	}

	interest := &models.Interest{
		ListingID: listingID,
		UserID:    userID,
		Message:   message,
	}
	if err := s.interests.Create(ctx, interest); err != nil {
		if errors.Is(err, repository.ErrInterestExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "интерес уже проявлен")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить интерес")
	}

	if s.hub != nil {
		_ = s.hub.BroadcastToUser(listing.OwnerID, models.EventInterestShown, map[string]interface{}{
			"listing_id": listing.ID,
			"title":      listing.Title,
			"user_id":    userID,
		})
	}

	return interest, nil
}

// ListingInterests возвращает интересы к объявлению. Доступно владельцу.
func (s *ListingService) ListingInterests(ctx context.Context, listingID, callerID uuid.UUID) ([]models.Interest, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(callerID) {
		return nil, apperror.ErrForbidden
	}

	interests, err := s.interests.ListByListing(ctx, listingID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить интересы")
	}
	return interests, nil
}

// MyInterests возвращает интересы пользователя.
func (s *ListingService) MyInterests(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	interests, err := s.interests.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить интересы")
	}
	return interests, nil
}
