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

const verificationColumns = `id, user_id, listing_id, request_type, status, reason, user_notes, admin_notes,
	bump_count, last_bump_time, last_request_time, priority_score, bump_enabled,
	admin_locked_at, admin_locked_by, admin_lock_reason, created_at, updated_at`

func pendingQueueStatuses() pq.StringArray {
	statuses := make(pq.StringArray, len(valueobject.PendingQueueStatuses))
	for i, s := range valueobject.PendingQueueStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

type VerificationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewVerificationRepositoryAdapter(db *sqlx.DB) *VerificationRepositoryAdapter {
	return &VerificationRepositoryAdapter{db: db}
}

func (r *VerificationRepositoryAdapter) Create(ctx context.Context, req *entity.VerificationRequest) error {
	query := `INSERT INTO verification_requests (id, user_id, listing_id, request_type, status, reason, user_notes,
			admin_notes, bump_count, last_request_time, priority_score, bump_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		req.ID, req.UserID, req.ListingID, req.RequestType, req.Status, req.Reason, req.UserNotes,
		pq.StringArray(req.AdminNotes), req.BumpCount, req.LastRequestTime, req.PriorityScore, req.BumpEnabled,
		req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrPendingRequestExists
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку на верификацию")
	}
	return nil
}

func (r *VerificationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	return r.findOne(ctx, `SELECT `+verificationColumns+` FROM verification_requests WHERE id = $1`, id)
}

func (r *VerificationRepositoryAdapter) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	return r.findOne(ctx, `SELECT `+verificationColumns+` FROM verification_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *VerificationRepositoryAdapter) findOne(ctx context.Context, query string, args ...interface{}) (*entity.VerificationRequest, error) {
	var row verificationRow
	if err := executorFrom(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrVerificationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку на верификацию")
	}
	return row.toEntity(), nil
}

func (r *VerificationRepositoryAdapter) FindPending(
	ctx context.Context,
	userID uuid.UUID,
	requestType valueobject.VerificationRequestType,
	listingID *uuid.UUID,
) (*entity.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_requests
		WHERE user_id = $1 AND request_type = $2 AND listing_id IS NOT DISTINCT FROM $3 AND status = ANY($4)
		ORDER BY created_at DESC LIMIT 1`
	req, err := r.findOne(ctx, query, userID, requestType, listingID, pendingQueueStatuses())
	if errors.Is(err, apperror.ErrVerificationNotFound) {
		return nil, nil
	}
	return req, err
}

func (r *VerificationRepositoryAdapter) SaveBump(ctx context.Context, req *entity.VerificationRequest, expectedBumpCount int) error {
	query := `UPDATE verification_requests
		SET bump_count = $2, last_bump_time = $3, priority_score = $4, updated_at = $5
		WHERE id = $1 AND bump_count = $6 AND bump_enabled AND admin_locked_at IS NULL`
	res, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		req.ID, req.BumpCount, req.LastBumpTime, req.PriorityScore, req.UpdatedAt, expectedBumpCount)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось поднять заявку")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось поднять заявку")
	}
	if n == 0 {
		return apperror.ErrStaleVerificationBump
	}
	return nil
}

func (r *VerificationRepositoryAdapter) Update(ctx context.Context, req *entity.VerificationRequest) error {
	query := `UPDATE verification_requests
		SET status = $2, admin_notes = $3, bump_enabled = $4, admin_locked_at = $5, admin_locked_by = $6,
			admin_lock_reason = $7, updated_at = $8
		WHERE id = $1`
	res, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		req.ID, req.Status, pq.StringArray(req.AdminNotes), req.BumpEnabled, req.AdminLockedAt, req.AdminLockedBy,
		req.AdminLockReason, req.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку на верификацию")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку на верификацию")
	}
	if n == 0 {
		return apperror.ErrVerificationNotFound
	}
	return nil
}

func (r *VerificationRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.VerificationRequest, error) {
	return r.list(ctx, `SELECT `+verificationColumns+` FROM verification_requests
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *VerificationRepositoryAdapter) ListQueue(ctx context.Context, filter repository.VerificationQueueFilter) ([]*entity.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_requests WHERE 1 = 1`
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.RequestType != nil {
		query += fmt.Sprintf(" AND request_type = $%d", argIndex)
		args = append(args, *filter.RequestType)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY priority_score DESC, created_at ASC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	return r.list(ctx, query, args...)
}

func (r *VerificationRepositoryAdapter) list(ctx context.Context, query string, args ...interface{}) ([]*entity.VerificationRequest, error) {
	var rows []verificationRow
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки на верификацию")
	}
	result := make([]*entity.VerificationRequest, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *VerificationRepositoryAdapter) AddDocument(ctx context.Context, doc *entity.VerificationDocument) error {
	query := `INSERT INTO verification_documents (id, request_id, user_id, file_path, file_type, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		doc.ID, doc.RequestID, doc.UserID, doc.FilePath, doc.FileType, doc.FileSize, doc.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить документ")
	}
	return nil
}

type verificationRow struct {
	ID              uuid.UUID      `db:"id"`
	UserID          uuid.UUID      `db:"user_id"`
	ListingID       *uuid.UUID     `db:"listing_id"`
	RequestType     string         `db:"request_type"`
	Status          string         `db:"status"`
	Reason          string         `db:"reason"`
	UserNotes       *string        `db:"user_notes"`
	AdminNotes      pq.StringArray `db:"admin_notes"`
	BumpCount       int            `db:"bump_count"`
	LastBumpTime    *time.Time     `db:"last_bump_time"`
	LastRequestTime time.Time      `db:"last_request_time"`
	PriorityScore   int            `db:"priority_score"`
	BumpEnabled     bool           `db:"bump_enabled"`
	AdminLockedAt   *time.Time     `db:"admin_locked_at"`
	AdminLockedBy   *uuid.UUID     `db:"admin_locked_by"`
	AdminLockReason *string        `db:"admin_lock_reason"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (v *verificationRow) toEntity() *entity.VerificationRequest {
	notes := []string(v.AdminNotes)
	if notes == nil {
		notes = []string{}
	}
	return &entity.VerificationRequest{
		ID:              v.ID,
		UserID:          v.UserID,
		ListingID:       v.ListingID,
		RequestType:     valueobject.VerificationRequestType(v.RequestType),
		Status:          valueobject.QueueStatus(v.Status),
		Reason:          v.Reason,
		UserNotes:       v.UserNotes,
		AdminNotes:      notes,
		BumpCount:       v.BumpCount,
		LastBumpTime:    v.LastBumpTime,
		LastRequestTime: v.LastRequestTime,
		PriorityScore:   v.PriorityScore,
		BumpEnabled:     v.BumpEnabled,
		AdminLockedAt:   v.AdminLockedAt,
		AdminLockedBy:   v.AdminLockedBy,
		AdminLockReason: v.AdminLockReason,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}
