package inquiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/metrics"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

type ArchiveInquiryUseCase struct {
	tx            repository.TxManager
	inquiries     repository.InquiryRepository
	conversations repository.ConversationRepository
	notifier      event.Notifier
}

func NewArchiveInquiryUseCase(
	tx repository.TxManager,
	inquiries repository.InquiryRepository,
	conversations repository.ConversationRepository,
	notifier event.Notifier,
) *ArchiveInquiryUseCase {
	return &ArchiveInquiryUseCase{tx: tx, inquiries: inquiries, conversations: conversations, notifier: notifier}
}

// Execute архивирует запрос. Если беседа уже открыта, переписка в ней закрывается.
func (uc *ArchiveInquiryUseCase) Execute(ctx context.Context, inquiryID, callerID uuid.UUID, callerRole valueobject.Role) (*entity.Inquiry, error) {
	var (
		inq  *entity.Inquiry
		prev valueobject.InquiryStatus
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inq, err = uc.inquiries.FindForUpdate(ctx, inquiryID)
		if err != nil {
			return err
		}
		if !inq.IsParty(callerID) && callerRole != valueobject.RoleAdmin {
			return apperror.ErrForbidden
		}

		prev = inq.Status
		if err := inq.Archive(); err != nil {
			return err
		}
		if err := uc.inquiries.UpdateState(ctx, inq, prev); err != nil {
			return err
		}

		if inq.ConversationID == nil {
			return nil
		}
		conv, err := uc.conversations.FindForUpdate(ctx, *inq.ConversationID)
		if err != nil {
			return err
		}
		if !conv.CanSendMessages {
			return nil
		}
		conv.CloseMessaging()
		return uc.conversations.Update(ctx, conv)
	})
	if err != nil {
		return nil, err
	}

	metrics.InquiryTransition(string(prev), string(inq.Status))
	data := map[string]any{"inquiry_id": inq.ID, "listing_id": inq.ListingID, "status": inq.Status}
	for _, id := range []uuid.UUID{inq.BuyerID, inq.SellerID} {
		if id != callerID {
			uc.notifier.NotifyUser(id, event.InquiryArchived, data)
		}
	}
	return inq, nil
}
