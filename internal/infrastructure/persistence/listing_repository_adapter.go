package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

const listingColumns = `id, seller_id, title, short_description, industry, country, asking_price,
	status, is_seller_verified, created_at, updated_at`

var browsableListingStatuses = pq.StringArray{
	string(valueobject.ListingStatusActive),
	string(valueobject.ListingStatusVerifiedAnonymous),
	string(valueobject.ListingStatusPendingVerification),
}

type ListingRepositoryAdapter struct {
	db *sqlx.DB
}

func NewListingRepositoryAdapter(db *sqlx.DB) *ListingRepositoryAdapter {
	return &ListingRepositoryAdapter{db: db}
}

func (r *ListingRepositoryAdapter) Create(ctx context.Context, l *entity.Listing) error {
	query := `INSERT INTO listings (id, seller_id, title, short_description, industry, country, asking_price,
			status, is_seller_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		l.ID, l.SellerID, l.Title, l.ShortDescription, l.Industry, l.Country, l.AskingPrice,
		l.Status, l.IsSellerVerified, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}
	return nil
}

func (r *ListingRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var row listingRow
	if err := executorFrom(ctx, r.db).GetContext(ctx, &row, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	return row.toEntity(), nil
}

func (r *ListingRepositoryAdapter) ListBrowsable(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int, error) {
	where := " WHERE status = ANY($1)"
	args := []interface{}{browsableListingStatuses}
	argIndex := 2

	if filter.Industry != "" {
		where += fmt.Sprintf(" AND industry = $%d", argIndex)
		args = append(args, filter.Industry)
		argIndex++
	}
	if filter.Country != "" {
		where += fmt.Sprintf(" AND country = $%d", argIndex)
		args = append(args, filter.Country)
		argIndex++
	}

	exec := executorFrom(ctx, r.db)

	var total int
	if err := exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings`+where, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать объявления")
	}

	query := `SELECT ` + listingColumns + ` FROM listings` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []listingRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления")
	}
	return listingRowsToEntities(rows), total, nil
}

func (r *ListingRepositoryAdapter) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Listing, error) {
	var rows []listingRow
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &rows,
		`SELECT `+listingColumns+` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления продавца")
	}
	return listingRowsToEntities(rows), nil
}

func (r *ListingRepositoryAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error {
	res, err := executorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE listings SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус объявления")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус объявления")
	}
	if n == 0 {
		return apperror.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepositoryAdapter) MarkSellerVerified(ctx context.Context, sellerID uuid.UUID, verified bool) error {
	_, err := executorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE listings SET is_seller_verified = $2, updated_at = $3 WHERE seller_id = $1 AND is_seller_verified <> $2`,
		sellerID, verified, time.Now())
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить объявления продавца")
	}
	return nil
}

type listingRow struct {
	ID               uuid.UUID `db:"id"`
	SellerID         uuid.UUID `db:"seller_id"`
	Title            string    `db:"title"`
	ShortDescription string    `db:"short_description"`
	Industry         string    `db:"industry"`
	Country          string    `db:"country"`
	AskingPrice      *float64  `db:"asking_price"`
	Status           string    `db:"status"`
	IsSellerVerified bool      `db:"is_seller_verified"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (l *listingRow) toEntity() *entity.Listing {
	return &entity.Listing{
		ID:               l.ID,
		SellerID:         l.SellerID,
		Title:            l.Title,
		ShortDescription: l.ShortDescription,
		Industry:         l.Industry,
		Country:          l.Country,
		AskingPrice:      l.AskingPrice,
		Status:           valueobject.ListingStatus(l.Status),
		IsSellerVerified: l.IsSellerVerified,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func listingRowsToEntities(rows []listingRow) []*entity.Listing {
	result := make([]*entity.Listing, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
