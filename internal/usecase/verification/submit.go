package verification

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
)

type SubmitInput struct {
	UserID      uuid.UUID
	Role        valueobject.Role
	RequestType valueobject.VerificationRequestType
	ListingID   *uuid.UUID
	Reason      string
	UserNotes   *string
}

type SubmitUseCase struct {
	tx            repository.TxManager
	verifications repository.VerificationRepository
	users         repository.UserRepository
	listings      repository.ListingRepository
	notifier      event.Notifier
	policy        entity.BumpPolicy
	now           func() time.Time
}

func NewSubmitUseCase(
	tx repository.TxManager,
	verifications repository.VerificationRepository,
	users repository.UserRepository,
	listings repository.ListingRepository,
	notifier event.Notifier,
	policy entity.BumpPolicy,
	now func() time.Time,
) *SubmitUseCase {
	return &SubmitUseCase{
		tx:            tx,
		verifications: verifications,
		users:         users,
		listings:      listings,
		notifier:      notifier,
		policy:        policy,
		now:           now,
	}
}

// Execute создаёт заявку. Активная заявка той же области блокирует повторную подачу:
// в пределах паузы возвращается COOLDOWN с оставшимся временем, после - CONFLICT.
func (uc *SubmitUseCase) Execute(ctx context.Context, in SubmitInput) (req *entity.VerificationRequest, err error) {
	defer func() { observe(actionSubmit, err) }()

	user, err := profile.Ensure(ctx, uc.users, in.UserID, in.Role)
	if err != nil {
		return nil, err
	}

	switch in.RequestType {
	case valueobject.RequestTypeUser:
		if user.IsVerified() {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "профиль уже верифицирован")
		}
	case valueobject.RequestTypeListing:
		if in.ListingID == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "для верификации объявления нужен listing_id")
		}
		listing, err := uc.listings.FindByID(ctx, *in.ListingID)
		if err != nil {
			return nil, err
		}
		if !listing.IsOwnedBy(in.UserID) {
			return nil, apperror.ErrForbidden
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип заявки на верификацию")
	}

	now := uc.now()
	req, err = entity.NewVerificationRequest(in.UserID, in.RequestType, in.ListingID, in.Reason, in.UserNotes, now)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := uc.verifications.FindPending(ctx, req.UserID, req.RequestType, req.ListingID)
		if err != nil {
			return err
		}
		if existing != nil {
			if wait := existing.SubmissionCooldownRemaining(uc.policy, now); wait > 0 {
				return apperror.Cooldown(
					fmt.Sprintf("повторная заявка будет доступна через %d ч.", int(math.Ceil(wait.Hours()))), wait)
			}
			return apperror.ErrPendingRequestExists
		}

		if err := uc.verifications.Create(ctx, req); err != nil {
			return err
		}

		if req.RequestType == valueobject.RequestTypeListing {
			return uc.listings.UpdateStatus(ctx, *req.ListingID, valueobject.ListingStatusPendingVerification)
		}
		if user.VerificationStatus == valueobject.VerificationStatusPending {
			return nil
		}
		return uc.users.UpdateVerificationStatus(ctx, req.UserID, valueobject.VerificationStatusPending)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyAdmins(event.VerificationSubmitted, map[string]any{
		"request_id":   req.ID,
		"user_id":      req.UserID,
		"request_type": req.RequestType,
		"listing_id":   req.ListingID,
	})
	return req, nil
}
