package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

// StatusSummary - состояние связи покупателя с продавцом по объявлению для клиента.
type StatusSummary struct {
	Exists          bool
	ConversationID  *uuid.UUID
	InquiryID       *uuid.UUID
	Status          valueobject.ConversationStatus
	Facilitated     bool
	CanSendMessages bool
	CreatedAt       *time.Time
}

type CheckConversationStatusUseCase struct {
	tx            repository.TxManager
	listings      repository.ListingRepository
	inquiries     repository.InquiryRepository
	conversations repository.ConversationRepository
}

func NewCheckConversationStatusUseCase(
	tx repository.TxManager,
	listings repository.ListingRepository,
	inquiries repository.InquiryRepository,
	conversations repository.ConversationRepository,
) *CheckConversationStatusUseCase {
	return &CheckConversationStatusUseCase{tx: tx, listings: listings, inquiries: inquiries, conversations: conversations}
}

func (uc *CheckConversationStatusUseCase) Execute(ctx context.Context, listingID, buyerID, callerID uuid.UUID) (*StatusSummary, error) {
	if callerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	var summary *StatusSummary
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := uc.listings.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.SellerID == buyerID {
			return apperror.ErrSelfConversation
		}

		inq, err := uc.inquiries.FindLatest(ctx, listingID, buyerID, listing.SellerID)
		if err != nil {
			return err
		}
		if inq == nil {
			summary = &StatusSummary{Exists: false}
			return nil
		}

		inquiryID := inq.ID
		if inq.ConversationID != nil {
			conv, err := uc.conversations.FindByID(ctx, *inq.ConversationID)
			if err != nil {
				return err
			}
			summary = &StatusSummary{
				Exists:          true,
				ConversationID:  &conv.ID,
				InquiryID:       &inquiryID,
				Status:          conv.Status,
				Facilitated:     conv.Facilitated,
				CanSendMessages: conv.CanSendMessages,
				CreatedAt:       &conv.CreatedAt,
			}
			return nil
		}

		summary = &StatusSummary{
			Exists:    true,
			InquiryID: &inquiryID,
			Status:    inq.Status.ConversationStatus(),
			CreatedAt: &inq.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
