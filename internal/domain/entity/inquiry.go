package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

// Inquiry - интерес покупателя к объявлению. Статус меняется только через методы ниже.
type Inquiry struct {
	ID             uuid.UUID
	ListingID      uuid.UUID
	BuyerID        uuid.UUID
	SellerID       uuid.UUID
	Message        string
	Status         valueobject.InquiryStatus
	ConversationID *uuid.UUID
	EngagedAt      *time.Time
	FacilitatedAt  *time.Time
	ArchivedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewInquiry создаёт запрос. Продавец всегда берётся из объявления.
func NewInquiry(listing *Listing, buyerID uuid.UUID, message string) (*Inquiry, error) {
	if listing == nil {
		return nil, apperror.ErrListingNotFound
	}
	if listing.SellerID == buyerID {
		return nil, apperror.ErrSelfInquiry
	}
	if !listing.Status.IsBrowsable() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "объявление не принимает запросы")
	}
	if message != "" {
		if err := validation.ValidateLength("сообщение", message, 0, validation.MaxInquiryMessageLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	now := time.Now()
	return &Inquiry{
		ID:        uuid.New(),
		ListingID: listing.ID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		Message:   message,
		Status:    valueobject.InquiryStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (i *Inquiry) transition(action valueobject.InquiryAction, to valueobject.InquiryStatus) error {
	if !i.Status.CanTransitionTo(action, to) {
		return apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("действие %s недоступно для запроса в статусе %s", action, i.Status))
	}
	i.Status = to
	i.UpdatedAt = time.Now()
	return nil
}

// Engage применяет таблицу решений к свежим статусам верификации сторон.
// Повторное вовлечение отклоняется.
func (i *Inquiry) Engage(buyer, seller valueobject.VerificationStatus) error {
	if !i.Status.Allows(valueobject.InquiryActionEngage) {
		return apperror.New(apperror.ErrCodeInvalidState, "продавец уже откликнулся на этот запрос")
	}
	if err := i.transition(valueobject.InquiryActionEngage, valueobject.EngagementOutcome(buyer, seller)); err != nil {
		return err
	}
	i.EngagedAt = &i.UpdatedAt
	return nil
}

// Reevaluate переводит запрос в ready_for_admin_connection, когда обе стороны уже верифицированы.
// Возвращает false, если переход не нужен.
func (i *Inquiry) Reevaluate(buyer, seller valueobject.VerificationStatus) (bool, error) {
	if !i.Status.IsPendingVerification() {
		return false, nil
	}
	if valueobject.EngagementOutcome(buyer, seller) != valueobject.InquiryStatusReadyForAdminConnection {
		return false, nil
	}
	if err := i.transition(valueobject.InquiryActionReevaluate, valueobject.InquiryStatusReadyForAdminConnection); err != nil {
		return false, err
	}
	return true, nil
}

// Facilitate привязывает беседу и открывает чат.
func (i *Inquiry) Facilitate(conversationID uuid.UUID) error {
	if i.ConversationID != nil {
		return apperror.New(apperror.ErrCodeInvalidState, "беседа для запроса уже создана")
	}
	if err := i.transition(valueobject.InquiryActionFacilitate, valueobject.InquiryStatusConnectionFacilitated); err != nil {
		return err
	}
	i.ConversationID = &conversationID
	i.FacilitatedAt = &i.UpdatedAt
	return nil
}

func (i *Inquiry) Archive() error {
	if err := i.transition(valueobject.InquiryActionArchive, valueobject.InquiryStatusArchived); err != nil {
		return err
	}
	i.ArchivedAt = &i.UpdatedAt
	return nil
}

func (i *Inquiry) IsSeller(userID uuid.UUID) bool {
	return i.SellerID == userID
}

func (i *Inquiry) IsBuyer(userID uuid.UUID) bool {
	return i.BuyerID == userID
}

func (i *Inquiry) IsParty(userID uuid.UUID) bool {
	return i.IsBuyer(userID) || i.IsSeller(userID)
}

// CounterpartyOf возвращает вторую сторону запроса.
func (i *Inquiry) CounterpartyOf(userID uuid.UUID) uuid.UUID {
	if i.IsBuyer(userID) {
		return i.SellerID
	}
	return i.BuyerID
}
