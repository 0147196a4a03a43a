package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error)
	// FindForUpdate блокирует строку запроса до конца транзакции.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error)
	// UpdateState сохраняет статус и связанные поля, только если текущий статус
	// в базе равен expected. Иначе возвращает apperror.ErrStaleInquiryStatus.
	UpdateState(ctx context.Context, inquiry *entity.Inquiry, expected valueobject.InquiryStatus) error
	// FindLatest возвращает самый свежий запрос для тройки или nil.
	FindLatest(ctx context.Context, listingID, buyerID, sellerID uuid.UUID) (*entity.Inquiry, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Inquiry, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Inquiry, error)
	ListByStatus(ctx context.Context, status valueobject.InquiryStatus, limit, offset int) ([]*entity.Inquiry, error)
	// LockPendingForUser блокирует запросы в ожидании верификации, где пользователь - сторона.
	LockPendingForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Inquiry, error)
}
