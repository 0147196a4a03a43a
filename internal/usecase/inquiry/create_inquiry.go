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
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
)

type CreateInquiryInput struct {
	ListingID uuid.UUID
	BuyerID   uuid.UUID
	BuyerRole valueobject.Role
	Message   string
}

type CreateInquiryUseCase struct {
	listings  repository.ListingRepository
	inquiries repository.InquiryRepository
	users     repository.UserRepository
	notifier  event.Notifier
}

func NewCreateInquiryUseCase(
	listings repository.ListingRepository,
	inquiries repository.InquiryRepository,
	users repository.UserRepository,
	notifier event.Notifier,
) *CreateInquiryUseCase {
	return &CreateInquiryUseCase{listings: listings, inquiries: inquiries, users: users, notifier: notifier}
}

// Execute создаёт запрос. Продавец определяется по объявлению, а не по данным клиента.
func (uc *CreateInquiryUseCase) Execute(ctx context.Context, in CreateInquiryInput) (*entity.Inquiry, error) {
	listing, err := uc.listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == in.BuyerID {
		return nil, apperror.ErrSelfInquiry
	}
	if in.BuyerRole != valueobject.RoleBuyer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отправлять запросы могут только покупатели")
	}

	if _, err := profile.Ensure(ctx, uc.users, in.BuyerID, in.BuyerRole); err != nil {
		return nil, err
	}

	inq, err := entity.NewInquiry(listing, in.BuyerID, in.Message)
	if err != nil {
		return nil, err
	}

	if err := uc.inquiries.Create(ctx, inq); err != nil {
		return nil, err
	}

	metrics.InquiryTransition("", string(inq.Status))
	uc.notifier.NotifyUser(inq.SellerID, event.InquiryCreated, map[string]any{
		"inquiry_id": inq.ID,
		"listing_id": inq.ListingID,
		"status":     inq.Status,
	})
	return inq, nil
}
