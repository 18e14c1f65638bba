package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// ListingFilter задаёт параметры выборки объявлений.
type ListingFilter struct {
	Category valueobject.ListingCategory
	SaleType valueobject.SaleType
	Status   valueobject.ListingStatus
	OwnerID  uuid.UUID
	Search   string
	Limit    int
	Offset   int
}

// ListingRepository описывает хранилище объявлений.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	SetStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error
}
