package inquiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/metrics"
)

type FacilitateResult struct {
	Inquiry      *entity.Inquiry
	Conversation *entity.Conversation
}

type FacilitateConnectionUseCase struct {
	tx            repository.TxManager
	inquiries     repository.InquiryRepository
	conversations repository.ConversationRepository
	notifier      event.Notifier
	autoApprove   bool
}

func NewFacilitateConnectionUseCase(
	tx repository.TxManager,
	inquiries repository.InquiryRepository,
	conversations repository.ConversationRepository,
	notifier event.Notifier,
	autoApprove bool,
) *FacilitateConnectionUseCase {
	return &FacilitateConnectionUseCase{
		tx:            tx,
		inquiries:     inquiries,
		conversations: conversations,
		notifier:      notifier,
		autoApprove:   autoApprove,
	}
}

// Execute создаёт беседу для готового запроса. Это единственный путь, которым
// открывается переписка между сторонами.
func (uc *FacilitateConnectionUseCase) Execute(ctx context.Context, inquiryID, adminID uuid.UUID) (*FacilitateResult, error) {
	var (
		inq  *entity.Inquiry
		conv *entity.Conversation
		prev valueobject.InquiryStatus
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inq, err = uc.inquiries.FindForUpdate(ctx, inquiryID)
		if err != nil {
			return err
		}

		conv, err = entity.NewFacilitatedConversation(inq, adminID, uc.autoApprove)
		if err != nil {
			return err
		}
		if err := uc.conversations.Create(ctx, conv); err != nil {
			return err
		}

		prev = inq.Status
		if err := inq.Facilitate(conv.ID); err != nil {
			return err
		}
		return uc.inquiries.UpdateState(ctx, inq, prev)
	})
	if err != nil {
		return nil, err
	}

	metrics.InquiryTransition(string(prev), string(inq.Status))
	data := map[string]any{
		"inquiry_id":        inq.ID,
		"listing_id":        inq.ListingID,
		"conversation_id":   conv.ID,
		"status":            conv.Status,
		"can_send_messages": conv.CanSendMessages,
	}
	uc.notifier.NotifyUser(inq.BuyerID, event.InquiryFacilitated, data)
	uc.notifier.NotifyUser(inq.SellerID, event.InquiryFacilitated, data)

	return &FacilitateResult{Inquiry: inq, Conversation: conv}, nil
}
