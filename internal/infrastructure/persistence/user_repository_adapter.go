package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

const userColumns = `id, role, verification_status, full_name, phone, country, is_deleted, created_at, updated_at`

type UserRepositoryAdapter struct {
	db *sqlx.DB
}

func NewUserRepositoryAdapter(db *sqlx.DB) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db}
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT is_deleted`, id)
}

func (r *UserRepositoryAdapter) FindForShare(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT is_deleted FOR SHARE`, id)
}

func (r *UserRepositoryAdapter) find(ctx context.Context, query string, id uuid.UUID) (*entity.User, error) {
	var row userRow
	if err := executorFrom(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

// Upsert создаёт профиль или обновляет его контактные поля. Роль и статус
// верификации существующего профиля не меняются.
func (r *UserRepositoryAdapter) Upsert(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO users (id, role, verification_status, full_name, phone, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			country = EXCLUDED.country,
			updated_at = EXCLUDED.updated_at
		RETURNING role, verification_status, created_at`
	err := executorFrom(ctx, r.db).QueryRowxContext(ctx, query,
		u.ID, u.Role, u.VerificationStatus, u.FullName, u.Phone, u.Country, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.Role, &u.VerificationStatus, &u.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить профиль")
	}
	return nil
}

func (r *UserRepositoryAdapter) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error {
	res, err := executorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET verification_status = $2, updated_at = $3 WHERE id = $1 AND NOT is_deleted`,
		id, status, time.Now())
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус верификации")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус верификации")
	}
	if n == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryAdapter) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &ids,
		`SELECT id FROM users WHERE role = $1 AND NOT is_deleted`, valueobject.RoleAdmin); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить администраторов")
	}
	return ids, nil
}

type userRow struct {
	ID                 uuid.UUID `db:"id"`
	Role               string    `db:"role"`
	VerificationStatus string    `db:"verification_status"`
	FullName           *string   `db:"full_name"`
	Phone              *string   `db:"phone"`
	Country            *string   `db:"country"`
	IsDeleted          bool      `db:"is_deleted"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:                 u.ID,
		Role:               valueobject.Role(u.Role),
		VerificationStatus: valueobject.VerificationStatus(u.VerificationStatus),
		FullName:           u.FullName,
		Phone:              u.Phone,
		Country:            u.Country,
		IsDeleted:          u.IsDeleted,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
