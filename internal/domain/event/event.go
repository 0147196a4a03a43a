// Package event описывает пользовательские уведомления, которые сценарии
// отправляют после фиксации транзакции.
package event

import "github.com/google/uuid"

const (
	InquiryCreated            = "inquiries.new"
	InquiryEngaged            = "inquiries.engaged"
	InquiryReadyForConnection = "inquiries.ready_for_connection"
	InquiryFacilitated        = "inquiries.facilitated"
	InquiryArchived           = "inquiries.archived"
	ConversationApproved      = "conversations.approved"
	ConversationRejected      = "conversations.rejected"
	ChatMessage               = "chat.message"
	VerificationSubmitted     = "verification.submitted"
	VerificationBumped        = "verification.bumped"
	VerificationUpdated       = "verification.updated"
	ProfileUpdated            = "profile.updated"
)

// Notifier доставляет уведомления без ожидания результата. Ошибки доставки
// только логируются и не влияют на вызывающий сценарий.
type Notifier interface {
	NotifyUser(userID uuid.UUID, name string, data any)
	NotifyAdmins(name string, data any)
}

// Nop ничего не отправляет.
type Nop struct{}

func (Nop) NotifyUser(uuid.UUID, string, any) {}
func (Nop) NotifyAdmins(string, any)          {}
