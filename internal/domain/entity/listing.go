package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

type Listing struct {
	ID               uuid.UUID
	SellerID         uuid.UUID
	Title            string
	ShortDescription string
	Industry         string
	Country          string
	AskingPrice      *float64
	Status           valueobject.ListingStatus
	IsSellerVerified bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewListingInput struct {
	Title            string
	ShortDescription string
	Industry         string
	Country          string
	AskingPrice      *float64
}

// NewListing фиксирует статус верификации продавца на момент публикации.
func NewListing(seller *User, input NewListingInput) (*Listing, error) {
	if seller.Role != valueobject.RoleSeller {
		return nil, apperror.New(apperror.ErrCodeForbidden, "публиковать объявления могут только продавцы")
	}
	if err := validation.ValidateLength("заголовок", input.Title, validation.MinListingTitleLength, validation.MaxListingTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", input.ShortDescription, 0, validation.MaxListingDescriptionLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if input.AskingPrice != nil && *input.AskingPrice < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "цена не может быть отрицательной")
	}

	now := time.Now()
	return &Listing{
		ID:               uuid.New(),
		SellerID:         seller.ID,
		Title:            input.Title,
		ShortDescription: input.ShortDescription,
		Industry:         input.Industry,
		Country:          input.Country,
		AskingPrice:      input.AskingPrice,
		Status:           valueobject.ListingStatusActive,
		IsSellerVerified: seller.IsVerified(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.SellerID == userID
}

// ChangeStatus: продавец переключает только active/inactive своего объявления, администратор - любой статус.
func (l *Listing) ChangeStatus(actor *User, status valueobject.ListingStatus) error {
	if !status.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "некорректный статус объявления")
	}
	if !actor.IsAdmin() {
		if !l.IsOwnedBy(actor.ID) {
			return apperror.ErrForbidden
		}
		if !status.SellerCanSet() {
			return apperror.New(apperror.ErrCodeForbidden, "этот статус может выставить только администратор")
		}
		if l.Status == valueobject.ListingStatusRejectedByAdmin {
			return apperror.New(apperror.ErrCodeInvalidState, "объявление отклонено администратором")
		}
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return nil
}
