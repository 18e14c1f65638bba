package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository/common"
)

// ClaimRepository отвечает за работу со ставками и предложениями.
// Обе таблицы имеют одинаковую форму, вид заявки выбирает таблицу.
//
// Открытая заявка хранится с status = NULL; наружу она отдаётся пустой
// строкой (valueobject.ClaimStatusOpen), для этого выборки используют
// COALESCE, а записи - NULLIF.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository создаёт новый экземпляр.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimColumns = `id, listing_id, user_id, amount, message, COALESCE(status, '') AS status, created_at, updated_at`

// activeClaimCondition отбирает заявки, участвующие в ранжировании:
// выбывшие (failed/rejected) и завершённые не учитываются.
const activeClaimCondition = `(status IS NULL OR status NOT IN ('failed', 'rejected', 'completed'))`

// claimRanking задаёт порядок ранжирования: сумма по убыванию,
// при равенстве побеждает более ранняя заявка.
const claimRanking = `ORDER BY amount DESC, created_at ASC, id ASC`

// GetByID возвращает заявку по идентификатору.
func (r *ClaimRepository) GetByID(ctx context.Context, kind valueobject.ClaimKind, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, claimColumns, kind.Table())
	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("claim repository: get by id %w", err)
	}
	claim.Kind = kind
	return &claim, nil
}

// Insert сохраняет новую заявку со статусом "открыта".
func (r *ClaimRepository) Insert(ctx context.Context, kind valueobject.ClaimKind, claim *models.Claim) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (listing_id, user_id, amount, message, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at, updated_at
	`, kind.Table())
	if err := r.db.QueryRowxContext(
		ctx, query,
		claim.ListingID, claim.UserID, claim.Amount, claim.Message, string(claim.Status),
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt); err != nil {
		return fmt.Errorf("claim repository: insert %w", err)
	}
	claim.Kind = kind
	return nil
}

// ListByListing возвращает все заявки объявления в порядке ранжирования.
func (r *ClaimRepository) ListByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE listing_id = $1 %s`, claimColumns, kind.Table(), claimRanking)
	return r.selectClaims(ctx, kind, query, listingID)
}

// ListActiveByListing возвращает заявки, участвующие в ранжировании.
func (r *ClaimRepository) ListActiveByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE listing_id = $1 AND %s %s`,
		claimColumns, kind.Table(), activeClaimCondition, claimRanking)
	return r.selectClaims(ctx, kind, query, listingID)
}

// ListByUser возвращает заявки пользователя, свежие первыми.
func (r *ClaimRepository) ListByUser(ctx context.Context, kind valueobject.ClaimKind, userID uuid.UUID) ([]models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC`, claimColumns, kind.Table())
	return r.selectClaims(ctx, kind, query, userID)
}

func (r *ClaimRepository) selectClaims(ctx context.Context, kind valueobject.ClaimKind, query string, arg interface{}) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.SelectContext(ctx, &claims, query, arg); err != nil {
		return nil, fmt.Errorf("claim repository: select %w", err)
	}
	for i := range claims {
		claims[i].Kind = kind
	}
	return claims, nil
}

// UpsertBidAbove атомарно регистрирует ставку аукциона. Проверка максимума
// выполняется внутри транзакции под блокировкой строки объявления, поэтому
// две конкурирующие ставки не могут обе пройти проверку по устаревшему
// максимуму (гонка read-then-write исключена).
func (r *ClaimRepository) UpsertBidAbove(ctx context.Context, claim *models.Claim) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Сериализуем конкурирующие ставки по одному объявлению.
		var listingID uuid.UUID
		if err := tx.GetContext(ctx, &listingID,
			`SELECT id FROM listings WHERE id = $1 FOR UPDATE`, claim.ListingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return fmt.Errorf("claim repository: lock listing %w", err)
		}

		var highest float64
		maxQuery := `SELECT COALESCE(MAX(amount), 0) FROM bids WHERE listing_id = $1 AND ` + activeClaimCondition
		if err := tx.GetContext(ctx, &highest, maxQuery, claim.ListingID); err != nil {
			return fmt.Errorf("claim repository: current highest %w", err)
		}
		if claim.Amount <= highest {
			return ErrBidTooLow
		}

		// Активная ставка пользователя обновляется на месте,
		// иначе вставляется новая строка.
		var existingID uuid.UUID
		err := tx.GetContext(ctx, &existingID,
			`SELECT id FROM bids WHERE listing_id = $1 AND user_id = $2 AND `+activeClaimCondition,
			claim.ListingID, claim.UserID)
		switch {
		case err == nil:
			updateQuery := `
				UPDATE bids SET amount = $2, message = $3, updated_at = NOW()
				WHERE id = $1
				RETURNING id, created_at, updated_at
			`
			if err := tx.QueryRowxContext(ctx, updateQuery, existingID, claim.Amount, claim.Message).
				Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt); err != nil {
				return fmt.Errorf("claim repository: update bid %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			insertQuery := `
				INSERT INTO bids (listing_id, user_id, amount, message)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at, updated_at
			`
			if err := tx.QueryRowxContext(ctx, insertQuery, claim.ListingID, claim.UserID, claim.Amount, claim.Message).
				Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt); err != nil {
				return fmt.Errorf("claim repository: insert bid %w", err)
			}
		default:
			return fmt.Errorf("claim repository: existing bid %w", err)
		}

		claim.Kind = valueobject.ClaimKindBid
		claim.Status = valueobject.ClaimStatusOpen
		return nil
	})
}

// ApplySettlement одной транзакцией назначает победителя, переводит
// остальные активные заявки в проигравший статус и помечает объявление
// проданным. Частично применённый расчёт невозможен: при любой ошибке
// транзакция откатывается целиком.
func (r *ClaimRepository) ApplySettlement(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID, winnerID uuid.UUID, winnerStatus, loserStatus valueobject.ClaimStatus) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if winnerID != uuid.Nil {
			winnerQuery := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, kind.Table())
			if _, err := tx.ExecContext(ctx, winnerQuery, winnerID, winnerStatus); err != nil {
				return fmt.Errorf("claim repository: settle winner %w", err)
			}

			losersQuery := fmt.Sprintf(`
				UPDATE %s SET status = $3, updated_at = NOW()
				WHERE listing_id = $1 AND id <> $2 AND %s
			`, kind.Table(), activeClaimCondition)
			if _, err := tx.ExecContext(ctx, losersQuery, listingID, winnerID, loserStatus); err != nil {
				return fmt.Errorf("claim repository: settle losers %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`,
			listingID, valueobject.ListingStatusSold); err != nil {
			return fmt.Errorf("claim repository: mark listing sold %w", err)
		}
		return nil
	})
}

// CompleteClaim одной транзакцией завершает заявку и фиксирует
// объявление проданным.
func (r *ClaimRepository) CompleteClaim(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		claimQuery := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, kind.Table())
		if _, err := tx.ExecContext(ctx, claimQuery, claimID, valueobject.ClaimStatusCompleted); err != nil {
			return fmt.Errorf("claim repository: complete claim %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`,
			listingID, valueobject.ListingStatusSold); err != nil {
			return fmt.Errorf("claim repository: mark listing sold %w", err)
		}
		return nil
	})
}

// FailAndPromote одной транзакцией помечает заявку выбывшей и продвигает
// следующую по ранжированию в слот победителя. Возвращает продвинутую
// заявку или nil, если активных заявок не осталось.
func (r *ClaimRepository) FailAndPromote(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID, winnerStatus valueobject.ClaimStatus) (*models.Claim, error) {
	var promoted *models.Claim

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Блокировка объявления исключает параллельное продвижение.
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked,
			`SELECT id FROM listings WHERE id = $1 FOR UPDATE`, listingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return fmt.Errorf("claim repository: lock listing %w", err)
		}

		failQuery := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, kind.Table())
		if _, err := tx.ExecContext(ctx, failQuery, claimID, valueobject.ClaimStatusFailed); err != nil {
			return fmt.Errorf("claim repository: fail claim %w", err)
		}

		var next models.Claim
		nextQuery := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE listing_id = $1 AND %s
			%s
			LIMIT 1
		`, claimColumns, kind.Table(), activeClaimCondition, claimRanking)
		if err := tx.GetContext(ctx, &next, nextQuery, listingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("claim repository: next claim %w", err)
		}

		promoteQuery := fmt.Sprintf(`
			UPDATE %s SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, kind.Table())
		if err := tx.QueryRowxContext(ctx, promoteQuery, next.ID, winnerStatus).Scan(&next.UpdatedAt); err != nil {
			return fmt.Errorf("claim repository: promote claim %w", err)
		}

		next.Status = winnerStatus
		next.Kind = kind
		promoted = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}
