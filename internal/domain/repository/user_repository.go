package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FindForShare читает профиль с блокировкой FOR SHARE до конца транзакции.
	FindForShare(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Upsert(ctx context.Context, user *entity.User) error
	UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}
