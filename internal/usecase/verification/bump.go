package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

type BumpUseCase struct {
	tx            repository.TxManager
	verifications repository.VerificationRepository
	policy        entity.BumpPolicy
	now           func() time.Time
}

func NewBumpUseCase(
	tx repository.TxManager,
	verifications repository.VerificationRepository,
	policy entity.BumpPolicy,
	now func() time.Time,
) *BumpUseCase {
	return &BumpUseCase{tx: tx, verifications: verifications, policy: policy, now: now}
}

// Execute заново проверяет право на поднятие на сервере. При отказе заявка не меняется.
func (uc *BumpUseCase) Execute(ctx context.Context, requestID, userID uuid.UUID) (req *entity.VerificationRequest, err error) {
	defer func() { observe(actionBump, err) }()

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = uc.verifications.FindForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.IsOwnedBy(userID) {
			return apperror.ErrForbidden
		}

		expected := req.BumpCount
		if err := req.Bump(uc.policy, uc.now()); err != nil {
			return err
		}
		return uc.verifications.SaveBump(ctx, req, expected)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
