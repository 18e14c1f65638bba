package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// InterestRepository отвечает за интересы к fixed-price объявлениям.
type InterestRepository struct {
	db *sqlx.DB
}

// NewInterestRepository создаёт экземпляр репозитория.
func NewInterestRepository(db *sqlx.DB) *InterestRepository {
	return &InterestRepository{db: db}
}

// Create сохраняет новый интерес. Повторный интерес того же пользователя
// отклоняется ограничением уникальности на уровне схемы.
func (r *InterestRepository) Create(ctx context.Context, interest *models.Interest) error {
	query := `
		INSERT INTO interests (listing_id, user_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, interest.ListingID, interest.UserID, interest.Message).
		Scan(&interest.ID, &interest.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrInterestExists
		}
		return fmt.Errorf("interest repository: create %w", err)
	}
	return nil
}

// Exists проверяет, проявлял ли пользователь интерес к объявлению.
func (r *InterestRepository) Exists(ctx context.Context, listingID, userID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM interests WHERE listing_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &count, query, listingID, userID); err != nil {
		return false, fmt.Errorf("interest repository: exists %w", err)
	}
	return count > 0, nil
}

// ListByListing возвращает интересы к объявлению, свежие первыми.
func (r *InterestRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.Interest, error) {
	var interests []models.Interest
	query := `
		SELECT id, listing_id, user_id, message, created_at
		FROM interests
		WHERE listing_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &interests, query, listingID); err != nil {
		return nil, fmt.Errorf("interest repository: list by listing %w", err)
	}
	return interests, nil
}

// ListByUser возвращает интересы пользователя.
func (r *InterestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	var interests []models.Interest
	query := `
		SELECT id, listing_id, user_id, message, created_at
		FROM interests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &interests, query, userID); err != nil {
		return nil, fmt.Errorf("interest repository: list by user %w", err)
	}
	return interests, nil
}
