package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
)

const (
	activityCacheTTL  = 30 * time.Second
	dashboardCacheTTL = 30 * time.Second
)

// ActivityEntry - заявка покупателя вместе с объявлением и баннером торгов.
type ActivityEntry struct {
	Listing *models.Listing `json:"listing"`
	Claim   models.Claim    `json:"claim"`
	Banner  Banner          `json:"banner,omitempty"`
}

// BuyerActivity - сводка активности покупателя.
type BuyerActivity struct {
	Bids      []ActivityEntry   `json:"bids"`
	Offers    []ActivityEntry   `json:"offers"`
	Interests []models.Interest `json:"interests"`
}

// DashboardListing - объявление продавца со счётчиками активности.
type DashboardListing struct {
	Listing      models.Listing `json:"listing"`
	ActiveClaims int            `json:"active_claims"`
	TotalClaims  int            `json:"total_claims"`
	Interests    int            `json:"interests"`
}

// SellerDashboard - сводка продавца по его объявлениям.
type SellerDashboard struct {
	Listings []DashboardListing `json:"listings"`
}

// ActivityService собирает сводки активности покупателя и продавца.
// Сводки дорогие (несколько выборок на объявление), поэтому кэшируются
// с коротким TTL; изменение заявок сбрасывает кэш.
type ActivityService struct {
	listings  domainrepo.ListingRepository
	claims    domainrepo.ClaimRepository
	interests domainrepo.InterestRepository
	cache     *CacheService
}

// NewActivityService создаёт сервис сводок.
func NewActivityService(listings domainrepo.ListingRepository, claims domainrepo.ClaimRepository, interests domainrepo.InterestRepository, cache *CacheService) *ActivityService {
	return &ActivityService{
		listings:  listings,
		claims:    claims,
		interests: interests,
		cache:     cache,
	}
}

// GetBuyerActivity возвращает ставки, предложения и интересы пользователя
// с баннерами состояния торгов.
func (s *ActivityService) GetBuyerActivity(ctx context.Context, userID uuid.UUID) (*BuyerActivity, error) {
	value, err := s.cache.GetOrSet(ctx, ActivityCacheKey(userID), activityCacheTTL, func() (interface{}, error) {
		return s.buildBuyerActivity(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*BuyerActivity), nil
}

func (s *ActivityService) buildBuyerActivity(ctx context.Context, userID uuid.UUID) (*BuyerActivity, error) {
	activity := &BuyerActivity{
		Bids:      []ActivityEntry{},
		Offers:    []ActivityEntry{},
		Interests: []models.Interest{},
	}

	for _, kind := range []valueobject.ClaimKind{valueobject.ClaimKindBid, valueobject.ClaimKindOffer} {
		claims, err := s.claims.ListByUser(ctx, kind, userID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
		}
		for _, claim := range claims {
			entry := ActivityEntry{Claim: claim}
			if listing, lerr := s.listings.GetByID(ctx, claim.ListingID); lerr == nil {
				entry.Listing = listing
				entry.Banner = BannerFor(userID, listing, []models.Claim{claim})
			}
			if kind == valueobject.ClaimKindBid {
				activity.Bids = append(activity.Bids, entry)
			} else {
				activity.Offers = append(activity.Offers, entry)
			}
		}
	}

	interests, err := s.interests.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить интересы")
	}
	activity.Interests = interests

	return activity, nil
}

// GetSellerDashboard возвращает объявления продавца со счётчиками заявок.
func (s *ActivityService) GetSellerDashboard(ctx context.Context, ownerID uuid.UUID) (*SellerDashboard, error) {
	value, err := s.cache.GetOrSet(ctx, DashboardCacheKey(ownerID), dashboardCacheTTL, func() (interface{}, error) {
		return s.buildSellerDashboard(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*SellerDashboard), nil
}

func (s *ActivityService) buildSellerDashboard(ctx context.Context, ownerID uuid.UUID) (*SellerDashboard, error) {
	listings, err := s.listings.List(ctx, domainrepo.ListingFilter{OwnerID: ownerID, Limit: 100})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления")
	}

	dashboard := &SellerDashboard{Listings: make([]DashboardListing, 0, len(listings))}
	for _, listing := range listings {
		entry := DashboardListing{Listing: listing}

		if listing.SaleType.IsCompetitive() {
			kind, kerr := valueobject.ForSaleType(listing.SaleType)
			if kerr != nil {
				continue
			}
			all, cerr := s.claims.ListByListing(ctx, kind, listing.ID)
			if cerr != nil {
				return nil, apperror.Wrap(cerr, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
			}
			entry.TotalClaims = len(all)
			for _, claim := range all {
				if claim.IsActive() {
					entry.ActiveClaims++
				}
			}
		} else {
			interests, ierr := s.interests.ListByListing(ctx, listing.ID)
			if ierr != nil {
				return nil, apperror.Wrap(ierr, apperror.ErrCodeDatabaseError, "не удалось получить интересы")
			}
			entry.Interests = len(interests)
		}

		dashboard.Listings = append(dashboard.Listings, entry)
	}

	return dashboard, nil
}

// InvalidateFor сбрасывает кэш сводок после изменения заявок объявления.
func (s *ActivityService) InvalidateFor(listingID uuid.UUID) {
	s.cache.InvalidateListingCache(listingID)
}
