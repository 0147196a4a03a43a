package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
)

// Reevaluator продвигает запросы пользователя, прошедшего верификацию.
type Reevaluator interface {
	ReevaluateForUser(ctx context.Context, userID uuid.UUID) ([]inquiry.Advanced, error)
	Notify(advanced []inquiry.Advanced)
}

type AdminUpdateInput struct {
	RequestID         uuid.UUID
	AdminID           uuid.UUID
	OperationalStatus *valueobject.QueueStatus
	ProfileStatus     *valueobject.VerificationStatus
	AdminNote         *string
	LockRequest       bool
	UnlockRequest     bool
	LockReason        *string
}

func (in AdminUpdateInput) empty() bool {
	return in.OperationalStatus == nil && in.ProfileStatus == nil && in.AdminNote == nil &&
		!in.LockRequest && !in.UnlockRequest
}

type AdminUpdateUseCase struct {
	tx            repository.TxManager
	verifications repository.VerificationRepository
	users         repository.UserRepository
	listings      repository.ListingRepository
	reevaluator   Reevaluator
	notifier      event.Notifier
	now           func() time.Time
}

func NewAdminUpdateUseCase(
	tx repository.TxManager,
	verifications repository.VerificationRepository,
	users repository.UserRepository,
	listings repository.ListingRepository,
	reevaluator Reevaluator,
	notifier event.Notifier,
	now func() time.Time,
) *AdminUpdateUseCase {
	return &AdminUpdateUseCase{
		tx:            tx,
		verifications: verifications,
		users:         users,
		listings:      listings,
		reevaluator:   reevaluator,
		notifier:      notifier,
		now:           now,
	}
}

// Execute применяет все изменения заявки и профиля в одной транзакции.
// Статус пользователя меняется раньше, чем блокируются его ожидающие запросы:
// параллельный отклик продавца либо уже видит новый статус, либо попадает под повторную оценку.
func (uc *AdminUpdateUseCase) Execute(ctx context.Context, in AdminUpdateInput) (req *entity.VerificationRequest, err error) {
	defer func() { observe(actionAdminUpdate, err) }()

	if in.LockRequest && in.UnlockRequest {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя одновременно заблокировать и разблокировать заявку")
	}
	if in.empty() {
		return nil, apperror.New(apperror.ErrCodeValidation, "нет изменений для применения")
	}
	if in.ProfileStatus != nil && !in.ProfileStatus.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус верификации")
	}

	var advanced []inquiry.Advanced
	profileStatus := in.ProfileStatus
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = uc.verifications.FindForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}

		now := uc.now()
		if in.LockRequest {
			if err := req.Lock(in.AdminID, in.LockReason, now); err != nil {
				return err
			}
		}
		if in.UnlockRequest {
			req.Unlock(now)
		}
		if in.OperationalStatus != nil {
			if err := req.SetStatus(*in.OperationalStatus, now); err != nil {
				return err
			}
		}
		if in.AdminNote != nil {
			if err := req.AppendAdminNote(in.AdminID, *in.AdminNote, now); err != nil {
				return err
			}
		}
		if err := uc.verifications.Update(ctx, req); err != nil {
			return err
		}

		if profileStatus == nil && req.RequestType == valueobject.RequestTypeUser && in.OperationalStatus != nil {
			profileStatus = profileOutcome(*in.OperationalStatus)
		}
		if profileStatus != nil {
			advanced, err = uc.applyProfileStatus(ctx, req.UserID, *profileStatus)
			if err != nil {
				return err
			}
		}

		if req.RequestType == valueobject.RequestTypeListing && in.OperationalStatus != nil {
			return uc.applyListingOutcome(ctx, *req.ListingID, *in.OperationalStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(req.UserID, event.VerificationUpdated, map[string]any{
		"request_id":     req.ID,
		"status":         req.Status,
		"profile_status": profileStatus,
		"admin_locked":   req.IsAdminLocked(),
	})
	uc.reevaluator.Notify(advanced)
	return req, nil
}

func (uc *AdminUpdateUseCase) applyProfileStatus(ctx context.Context, userID uuid.UUID, status valueobject.VerificationStatus) ([]inquiry.Advanced, error) {
	if err := uc.users.UpdateVerificationStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	if err := uc.listings.MarkSellerVerified(ctx, userID, status.IsVerified()); err != nil {
		return nil, err
	}
	if !status.IsVerified() {
		return nil, nil
	}
	return uc.reevaluator.ReevaluateForUser(ctx, userID)
}

// profileOutcome выводит статус профиля из итогового решения по заявке на верификацию пользователя.
func profileOutcome(status valueobject.QueueStatus) *valueobject.VerificationStatus {
	var outcome valueobject.VerificationStatus
	switch status {
	case valueobject.QueueStatusApproved:
		outcome = valueobject.VerificationStatusVerified
	case valueobject.QueueStatusRejected:
		outcome = valueobject.VerificationStatusRejected
	default:
		return nil
	}
	return &outcome
}

// applyListingOutcome переносит решение по заявке на объявление.
func (uc *AdminUpdateUseCase) applyListingOutcome(ctx context.Context, listingID uuid.UUID, status valueobject.QueueStatus) error {
	switch status {
	case valueobject.QueueStatusApproved:
		return uc.listings.UpdateStatus(ctx, listingID, valueobject.ListingStatusVerifiedAnonymous)
	case valueobject.QueueStatusRejected:
		return uc.listings.UpdateStatus(ctx, listingID, valueobject.ListingStatusActive)
	}
	return nil
}
