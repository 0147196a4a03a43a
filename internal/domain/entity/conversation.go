package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

// Conversation создаётся только администратором из готового запроса, одна на запрос.
type Conversation struct {
	ID              uuid.UUID
	InquiryID       uuid.UUID
	ListingID       uuid.UUID
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Status          valueobject.ConversationStatus
	Facilitated     bool
	CanSendMessages bool
	FacilitatedBy   *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewFacilitatedConversation создаёт беседу для запроса. При autoApprove переписка
// открывается сразу, иначе ждёт отдельного одобрения.
func NewFacilitatedConversation(inquiry *Inquiry, adminID uuid.UUID, autoApprove bool) (*Conversation, error) {
	if inquiry.Status != valueobject.InquiryStatusReadyForAdminConnection {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "запрос ещё не готов к соединению сторон")
	}
	if inquiry.BuyerID == inquiry.SellerID {
		return nil, apperror.ErrSelfConversation
	}

	now := time.Now()
	conv := &Conversation{
		ID:            uuid.New(),
		InquiryID:     inquiry.ID,
		ListingID:     inquiry.ListingID,
		BuyerID:       inquiry.BuyerID,
		SellerID:      inquiry.SellerID,
		Status:        valueobject.ConversationStatusPendingApproval,
		Facilitated:   true,
		FacilitatedBy: &adminID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if autoApprove {
		conv.Status = valueobject.ConversationStatusApproved
		conv.CanSendMessages = true
	}
	return conv, nil
}

func (c *Conversation) Approve() error {
	if c.Status != valueobject.ConversationStatusPendingApproval {
		return apperror.New(apperror.ErrCodeInvalidState, "беседа уже рассмотрена")
	}
	c.Status = valueobject.ConversationStatusApproved
	c.CanSendMessages = true
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Conversation) Reject() error {
	if c.Status != valueobject.ConversationStatusPendingApproval {
		return apperror.New(apperror.ErrCodeInvalidState, "беседа уже рассмотрена")
	}
	c.Status = valueobject.ConversationStatusRejected
	c.CanSendMessages = false
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// Recipient возвращает второго участника беседы.
func (c *Conversation) Recipient(senderID uuid.UUID) uuid.UUID {
	if c.BuyerID == senderID {
		return c.SellerID
	}
	return c.BuyerID
}

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	CreatedAt      time.Time
}

func NewMessage(conv *Conversation, senderID uuid.UUID, content string) (*Message, error) {
	if !conv.IsParticipant(senderID) {
		return nil, apperror.ErrForbidden
	}
	if !conv.CanSendMessages {
		return nil, apperror.ErrMessagingLocked
	}
	if err := validation.ValidateLength("сообщение", content, validation.MinMessageLength, validation.MaxMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return &Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now(),
	}, nil
}

// CloseMessaging закрывает переписку, статус беседы не меняется.
func (c *Conversation) CloseMessaging() {
	c.CanSendMessages = false
	c.UpdatedAt = time.Now()
}
