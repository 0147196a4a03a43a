package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
)

// AnnotatedRequest - заявка с вычисленным правом на поднятие.
type AnnotatedRequest struct {
	Request     *entity.VerificationRequest
	Eligibility entity.BumpEligibility
}

type ListMineUseCase struct {
	verifications repository.VerificationRepository
	policy        entity.BumpPolicy
	now           func() time.Time
}

func NewListMineUseCase(verifications repository.VerificationRepository, policy entity.BumpPolicy, now func() time.Time) *ListMineUseCase {
	return &ListMineUseCase{verifications: verifications, policy: policy, now: now}
}

func (uc *ListMineUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]AnnotatedRequest, error) {
	requests, err := uc.verifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	result := make([]AnnotatedRequest, len(requests))
	for i, req := range requests {
		result[i] = AnnotatedRequest{Request: req, Eligibility: req.Eligibility(uc.policy, now)}
	}
	return result, nil
}

type ListQueueUseCase struct {
	verifications repository.VerificationRepository
}

func NewListQueueUseCase(verifications repository.VerificationRepository) *ListQueueUseCase {
	return &ListQueueUseCase{verifications: verifications}
}

// Execute возвращает очередь: сначала поднятые заявки, затем по времени подачи.
func (uc *ListQueueUseCase) Execute(ctx context.Context, filter repository.VerificationQueueFilter) ([]*entity.VerificationRequest, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.verifications.ListQueue(ctx, filter)
}
