package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
)

// ErrPhotoNotFound возвращается, когда изображение не найдено.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoRepository отвечает за метаданные изображений объявлений.
type PhotoRepository struct {
	db *sqlx.DB
}

// NewPhotoRepository создаёт экземпляр репозитория.
func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create сохраняет метаданные изображения.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.ListingPhoto) error {
	query := `
		INSERT INTO listing_photos (listing_id, file_path, file_type, file_size, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		photo.ListingID, photo.FilePath, photo.FileType, photo.FileSize, photo.Position,
	).Scan(&photo.ID, &photo.CreatedAt); err != nil {
		return fmt.Errorf("photo repository: create %w", err)
	}
	return nil
}

// GetByID возвращает метаданные изображения.
func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ListingPhoto, error) {
	var photo models.ListingPhoto
	query := `
		SELECT id, listing_id, file_path, file_type, file_size, position, created_at
		FROM listing_photos
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &photo, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("photo repository: get by id %w", err)
	}
	return &photo, nil
}

// ListByListing возвращает изображения объявления в порядке позиций.
func (r *PhotoRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingPhoto, error) {
	var photos []models.ListingPhoto
	query := `
		SELECT id, listing_id, file_path, file_type, file_size, position, created_at
		FROM listing_photos
		WHERE listing_id = $1
		ORDER BY position ASC, created_at ASC
	`
	if err := r.db.SelectContext(ctx, &photos, query, listingID); err != nil {
		return nil, fmt.Errorf("photo repository: list by listing %w", err)
	}
	return photos, nil
}

// Delete удаляет метаданные изображения.
func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listing_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("photo repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
