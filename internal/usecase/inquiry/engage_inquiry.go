package inquiry

import (
	"context"
	"maps"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/metrics"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

type EngageInput struct {
	InquiryID       uuid.UUID
	SellerID        uuid.UUID
	ResponseMessage *string
}

type NextSteps struct {
	BuyerVerificationRequired  bool `json:"buyer_verification_required"`
	SellerVerificationRequired bool `json:"seller_verification_required"`
	ReadyForAdminConnection    bool `json:"ready_for_admin_connection"`
}

type EngageResult struct {
	Inquiry   *entity.Inquiry
	NextSteps NextSteps
	Message   string
}

type EngageInquiryUseCase struct {
	tx        repository.TxManager
	inquiries repository.InquiryRepository
	users     repository.UserRepository
	notifier  event.Notifier
}

func NewEngageInquiryUseCase(
	tx repository.TxManager,
	inquiries repository.InquiryRepository,
	users repository.UserRepository,
	notifier event.Notifier,
) *EngageInquiryUseCase {
	return &EngageInquiryUseCase{tx: tx, inquiries: inquiries, users: users, notifier: notifier}
}

// Execute выполняет отклик продавца: блокирует запрос, читает актуальные статусы
// верификации обеих сторон и сохраняет переход условным обновлением.
func (uc *EngageInquiryUseCase) Execute(ctx context.Context, in EngageInput) (*EngageResult, error) {
	if err := validation.ValidateOptionalText("ответ", in.ResponseMessage, validation.MaxInquiryMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	var (
		inq  *entity.Inquiry
		prev valueobject.InquiryStatus
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inq, err = uc.inquiries.FindForUpdate(ctx, in.InquiryID)
		if err != nil {
			return err
		}
		if !inq.IsSeller(in.SellerID) {
			return apperror.ErrForbidden
		}

		seller, err := uc.users.FindForShare(ctx, inq.SellerID)
		if err != nil {
			return err
		}
		if !seller.IsVerified() {
			return apperror.ErrSellerNotVerified
		}

		buyer, err := uc.users.FindForShare(ctx, inq.BuyerID)
		if err != nil {
			return err
		}

		prev = inq.Status
		if err := inq.Engage(buyer.VerificationStatus, seller.VerificationStatus); err != nil {
			return err
		}
		return uc.inquiries.UpdateState(ctx, inq, prev)
	})
	if err != nil {
		return nil, err
	}

	metrics.InquiryTransition(string(prev), string(inq.Status))
	uc.notifyEngaged(inq, in.ResponseMessage)

	steps := NextSteps{
		BuyerVerificationRequired:  inq.Status == valueobject.InquiryStatusBuyerPendingVerification,
		SellerVerificationRequired: inq.Status == valueobject.InquiryStatusSellerPendingVerification,
		ReadyForAdminConnection:    inq.Status == valueobject.InquiryStatusReadyForAdminConnection,
	}
	return &EngageResult{Inquiry: inq, NextSteps: steps, Message: engageMessage(steps)}, nil
}

func (uc *EngageInquiryUseCase) notifyEngaged(inq *entity.Inquiry, response *string) {
	data := map[string]any{
		"inquiry_id": inq.ID,
		"listing_id": inq.ListingID,
		"status":     inq.Status,
	}
	buyerData := maps.Clone(data)
	if response != nil && *response != "" {
		buyerData["response_message"] = *response
	}

	uc.notifier.NotifyUser(inq.BuyerID, event.InquiryEngaged, buyerData)
	uc.notifier.NotifyUser(inq.SellerID, event.InquiryEngaged, data)
	if inq.Status == valueobject.InquiryStatusReadyForAdminConnection {
		uc.notifier.NotifyAdmins(event.InquiryReadyForConnection, data)
	}
}

func engageMessage(steps NextSteps) string {
	switch {
	case steps.ReadyForAdminConnection:
		return "Обе стороны верифицированы. Администратор свяжет вас в чате."
	case steps.BuyerVerificationRequired:
		return "Отклик отправлен. Покупателю нужно пройти верификацию."
	default:
		return "Отклик отправлен. Продавцу нужно пройти верификацию."
	}
}
