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

type ReviewConversationUseCase struct {
	tx            repository.TxManager
	inquiries     repository.InquiryRepository
	conversations repository.ConversationRepository
	notifier      event.Notifier
}

func NewReviewConversationUseCase(
	tx repository.TxManager,
	inquiries repository.InquiryRepository,
	conversations repository.ConversationRepository,
	notifier event.Notifier,
) *ReviewConversationUseCase {
	return &ReviewConversationUseCase{tx: tx, inquiries: inquiries, conversations: conversations, notifier: notifier}
}

// Execute одобряет или отклоняет беседу, ожидающую решения. При отклонении запрос архивируется.
func (uc *ReviewConversationUseCase) Execute(ctx context.Context, conversationID uuid.UUID, approve bool) (*entity.Conversation, error) {
	var (
		conv     *entity.Conversation
		archived *entity.Inquiry
		prev     valueobject.InquiryStatus
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		conv, err = uc.conversations.FindForUpdate(ctx, conversationID)
		if err != nil {
			return err
		}

		if approve {
			if err := conv.Approve(); err != nil {
				return err
			}
			return uc.conversations.Update(ctx, conv)
		}

		if err := conv.Reject(); err != nil {
			return err
		}
		if err := uc.conversations.Update(ctx, conv); err != nil {
			return err
		}

		inq, err := uc.inquiries.FindForUpdate(ctx, conv.InquiryID)
		if err != nil {
			return err
		}
		prev = inq.Status
		if err := inq.Archive(); err != nil {
			return err
		}
		if err := uc.inquiries.UpdateState(ctx, inq, prev); err != nil {
			return err
		}
		archived = inq
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := event.ConversationApproved
	if !approve {
		name = event.ConversationRejected
		metrics.InquiryTransition(string(prev), string(archived.Status))
	}
	data := map[string]any{
		"conversation_id":   conv.ID,
		"inquiry_id":        conv.InquiryID,
		"status":            conv.Status,
		"can_send_messages": conv.CanSendMessages,
	}
	uc.notifier.NotifyUser(conv.BuyerID, name, data)
	uc.notifier.NotifyUser(conv.SellerID, name, data)

	return conv, nil
}
