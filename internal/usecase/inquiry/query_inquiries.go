package inquiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

type GetInquiryUseCase struct {
	inquiries repository.InquiryRepository
}

func NewGetInquiryUseCase(inquiries repository.InquiryRepository) *GetInquiryUseCase {
	return &GetInquiryUseCase{inquiries: inquiries}
}

func (uc *GetInquiryUseCase) Execute(ctx context.Context, id, callerID uuid.UUID, callerRole valueobject.Role) (*entity.Inquiry, error) {
	inq, err := uc.inquiries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inq.IsParty(callerID) && callerRole != valueobject.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return inq, nil
}

type ListMyInquiriesUseCase struct {
	inquiries repository.InquiryRepository
}

func NewListMyInquiriesUseCase(inquiries repository.InquiryRepository) *ListMyInquiriesUseCase {
	return &ListMyInquiriesUseCase{inquiries: inquiries}
}

// Execute: продавец видит входящие запросы, остальные - отправленные.
func (uc *ListMyInquiriesUseCase) Execute(ctx context.Context, callerID uuid.UUID, callerRole valueobject.Role) ([]*entity.Inquiry, error) {
	if callerRole == valueobject.RoleSeller {
		return uc.inquiries.ListBySeller(ctx, callerID)
	}
	return uc.inquiries.ListByBuyer(ctx, callerID)
}

type ListEngagementQueueUseCase struct {
	inquiries repository.InquiryRepository
}

func NewListEngagementQueueUseCase(inquiries repository.InquiryRepository) *ListEngagementQueueUseCase {
	return &ListEngagementQueueUseCase{inquiries: inquiries}
}

// Execute возвращает запросы, готовые к соединению, начиная с самых давних.
func (uc *ListEngagementQueueUseCase) Execute(ctx context.Context, limit, offset int) ([]*entity.Inquiry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.inquiries.ListByStatus(ctx, valueobject.InquiryStatusReadyForAdminConnection, limit, offset)
}
