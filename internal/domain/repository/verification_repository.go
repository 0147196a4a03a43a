package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

type VerificationQueueFilter struct {
	Status      *valueobject.QueueStatus
	RequestType *valueobject.VerificationRequestType
	Limit       int
	Offset      int
}

type VerificationRepository interface {
	// Create возвращает apperror с кодом CONFLICT, если активная заявка той же области уже есть.
	Create(ctx context.Context, req *entity.VerificationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error)
	// FindPending возвращает активную заявку области (user, type, listing) или nil.
	FindPending(ctx context.Context, userID uuid.UUID, requestType valueobject.VerificationRequestType, listingID *uuid.UUID) (*entity.VerificationRequest, error)
	// SaveBump сохраняет поднятие, только если bump_count в базе равен expectedBumpCount.
	SaveBump(ctx context.Context, req *entity.VerificationRequest, expectedBumpCount int) error
	// Update сохраняет изменения администратора.
	Update(ctx context.Context, req *entity.VerificationRequest) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.VerificationRequest, error)
	ListQueue(ctx context.Context, filter VerificationQueueFilter) ([]*entity.VerificationRequest, error)
	AddDocument(ctx context.Context, doc *entity.VerificationDocument) error
}
