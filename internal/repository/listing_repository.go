package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrClaimNotFound    = errors.New("claim not found")
	ErrBidTooLow        = errors.New("bid does not exceed current highest")
	ErrInterestExists   = errors.New("interest already registered")
	ErrListingNotActive = errors.New("listing is not active")
)

// ListingRepository отвечает за работу с объявлениями.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository создаёт новый экземпляр.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_id, category, title, description, price, sale_type, status, location, created_at, updated_at`

// Create сохраняет новое объявление.
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (owner_id, category, title, description, price, sale_type, status, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		listing.OwnerID, listing.Category, listing.Title, listing.Description,
		listing.Price, listing.SaleType, listing.Status, listing.Location,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt); err != nil {
		return fmt.Errorf("listing repository: create %w", err)
	}
	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("listing repository: get by id %w", err)
	}
	return &listing, nil
}

// Update обновляет редактируемые поля объявления.
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, price = $4, location = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Price, listing.Location,
	).Scan(&listing.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListingNotFound
		}
		return fmt.Errorf("listing repository: update %w", err)
	}
	return nil
}

// Delete удаляет объявление. Заявки удаляются каскадом на уровне схемы.
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listing repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// List возвращает объявления по фильтру.
func (r *ListingRepository) List(ctx context.Context, filter domainrepo.ListingFilter) ([]models.Listing, error) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)

	appendCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Category != "" {
		appendCondition("category = $%d", filter.Category)
	}
	if filter.SaleType != "" {
		appendCondition("sale_type = $%d", filter.SaleType)
	}
	if filter.Status != "" {
		appendCondition("status = $%d", filter.Status)
	}
	if filter.OwnerID != uuid.Nil {
		appendCondition("owner_id = $%d", filter.OwnerID)
	}
	if filter.Search != "" {
		appendCondition("(title ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var listings []models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("listing repository: list %w", err)
	}
	return listings, nil
}

// SetStatus переводит объявление в новый статус.
func (r *ListingRepository) SetStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("listing repository: set status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrListingNotFound
	}
	return nil
}
