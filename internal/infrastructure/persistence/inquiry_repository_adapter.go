package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

const inquiryColumns = `id, listing_id, buyer_id, seller_id, message, status, conversation_id,
	engaged_at, facilitated_at, archived_at, created_at, updated_at`

var pendingVerificationInquiryStatuses = pq.StringArray{
	string(valueobject.InquiryStatusBuyerPendingVerification),
	string(valueobject.InquiryStatusSellerPendingVerification),
}

type InquiryRepositoryAdapter struct {
	db *sqlx.DB
}

func NewInquiryRepositoryAdapter(db *sqlx.DB) *InquiryRepositoryAdapter {
	return &InquiryRepositoryAdapter{db: db}
}

func (r *InquiryRepositoryAdapter) Create(ctx context.Context, inq *entity.Inquiry) error {
	query := `INSERT INTO inquiries (id, listing_id, buyer_id, seller_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		inq.ID, inq.ListingID, inq.BuyerID, inq.SellerID, inq.Message, inq.Status, inq.CreatedAt, inq.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать запрос")
	}
	return nil
}

func (r *InquiryRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error) {
	return r.findOne(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
}

func (r *InquiryRepositoryAdapter) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error) {
	return r.findOne(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1 FOR UPDATE`, id)
}

func (r *InquiryRepositoryAdapter) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Inquiry, error) {
	var row inquiryRow
	if err := executorFrom(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInquiryNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить запрос")
	}
	return row.toEntity(), nil
}

func (r *InquiryRepositoryAdapter) UpdateState(ctx context.Context, inq *entity.Inquiry, expected valueobject.InquiryStatus) error {
	query := `UPDATE inquiries
		SET status = $2, conversation_id = $3, engaged_at = $4, facilitated_at = $5, archived_at = $6, updated_at = $7
		WHERE id = $1 AND status = $8`
	res, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		inq.ID, inq.Status, inq.ConversationID, inq.EngagedAt, inq.FacilitatedAt, inq.ArchivedAt, inq.UpdatedAt, expected)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "беседа для запроса уже создана")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить запрос")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить запрос")
	}
	if n == 0 {
		return apperror.ErrStaleInquiryStatus
	}
	return nil
}

func (r *InquiryRepositoryAdapter) FindLatest(ctx context.Context, listingID, buyerID, sellerID uuid.UUID) (*entity.Inquiry, error) {
	var row inquiryRow
	query := `SELECT ` + inquiryColumns + ` FROM inquiries
		WHERE listing_id = $1 AND buyer_id = $2 AND seller_id = $3
		ORDER BY created_at DESC LIMIT 1`
	if err := executorFrom(ctx, r.db).GetContext(ctx, &row, query, listingID, buyerID, sellerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить запрос")
	}
	return row.toEntity(), nil
}

func (r *InquiryRepositoryAdapter) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

func (r *InquiryRepositoryAdapter) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

func (r *InquiryRepositoryAdapter) ListByStatus(ctx context.Context, status valueobject.InquiryStatus, limit, offset int) ([]*entity.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE status = $1
		ORDER BY updated_at ASC LIMIT $2 OFFSET $3`, status, limit, offset)
}

func (r *InquiryRepositoryAdapter) LockPendingForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries
		WHERE (buyer_id = $1 OR seller_id = $1) AND status = ANY($2)
		ORDER BY created_at
		FOR UPDATE`, userID, pendingVerificationInquiryStatuses)
}

func (r *InquiryRepositoryAdapter) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Inquiry, error) {
	var rows []inquiryRow
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить запросы")
	}
	result := make([]*entity.Inquiry, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type inquiryRow struct {
	ID             uuid.UUID  `db:"id"`
	ListingID      uuid.UUID  `db:"listing_id"`
	BuyerID        uuid.UUID  `db:"buyer_id"`
	SellerID       uuid.UUID  `db:"seller_id"`
	Message        string     `db:"message"`
	Status         string     `db:"status"`
	ConversationID *uuid.UUID `db:"conversation_id"`
	EngagedAt      *time.Time `db:"engaged_at"`
	FacilitatedAt  *time.Time `db:"facilitated_at"`
	ArchivedAt     *time.Time `db:"archived_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (i *inquiryRow) toEntity() *entity.Inquiry {
	return &entity.Inquiry{
		ID:             i.ID,
		ListingID:      i.ListingID,
		BuyerID:        i.BuyerID,
		SellerID:       i.SellerID,
		Message:        i.Message,
		Status:         valueobject.InquiryStatus(i.Status),
		ConversationID: i.ConversationID,
		EngagedAt:      i.EngagedAt,
		FacilitatedAt:  i.FacilitatedAt,
		ArchivedAt:     i.ArchivedAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
