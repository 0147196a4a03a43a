package dto

import (
	"github.com/google/uuid"
)

// CreateListingRequest - тело POST /listings.
type CreateListingRequest struct {
	Title            string   `json:"title" binding:"required"`
	ShortDescription string   `json:"short_description"`
	Industry         string   `json:"industry"`
	Country          string   `json:"country"`
	AskingPrice      *float64 `json:"asking_price"`
}

// UpdateListingStatusRequest - тело PUT /listings/:id/status.
type UpdateListingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProfileRequest - тело PUT /profile. Роль и статус верификации клиент не передаёт.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Country  *string `json:"country"`
}

// CreateInquiryRequest - тело POST /inquiries. Продавец определяется по объявлению.
type CreateInquiryRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Message   string    `json:"message"`
}

// EngageInquiryRequest - тело POST /inquiries/:id/engage.
type EngageInquiryRequest struct {
	ResponseMessage *string `json:"response_message"`
}

// CheckConversationRequest - тело POST /conversations/check.
type CheckConversationRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	BuyerID   uuid.UUID `json:"buyer_id" binding:"required"`
}

// SendMessageRequest - тело POST /conversations/:id/messages.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Значения поля action в VerificationRequestBody.
const (
	VerificationActionSubmit = "submit"
	VerificationActionBump   = "bump"
)

// VerificationRequestBody - тело POST /verification/request: подача новой заявки или поднятие существующей.
type VerificationRequestBody struct {
	Action      string     `json:"action"`
	RequestID   *uuid.UUID `json:"request_id"`
	RequestType string     `json:"request_type"`
	ListingID   *uuid.UUID `json:"listing_id"`
	Reason      string     `json:"reason"`
	UserNotes   *string    `json:"user_notes"`
}

// AdminVerificationUpdateRequest - тело PUT /admin/verification-queue/:id.
// Поля в camelCase основные, snake_case принимаются для старых клиентов.
type AdminVerificationUpdateRequest struct {
	OperationalStatus *string `json:"operationalStatus"`
	ProfileStatus     *string `json:"profileStatus"`
	AdminNote         *string `json:"adminNote"`
	LockRequest       bool    `json:"lockRequest"`
	UnlockRequest     bool    `json:"unlockRequest"`
	LockReason        *string `json:"lockReason"`

	OperationalStatusSnake *string `json:"operational_status"`
	ProfileStatusSnake     *string `json:"profile_status"`
	AdminNoteSnake         *string `json:"admin_note"`
	LockRequestSnake       bool    `json:"lock_request"`
	UnlockRequestSnake     bool    `json:"unlock_request"`
	LockReasonSnake        *string `json:"lock_reason"`
}

// Normalize сводит оба написания полей к camelCase. При конфликте побеждает camelCase.
func (r *AdminVerificationUpdateRequest) Normalize() {
	if r.OperationalStatus == nil {
		r.OperationalStatus = r.OperationalStatusSnake
	}
	if r.ProfileStatus == nil {
		r.ProfileStatus = r.ProfileStatusSnake
	}
	if r.AdminNote == nil {
		r.AdminNote = r.AdminNoteSnake
	}
	if r.LockReason == nil {
		r.LockReason = r.LockReasonSnake
	}
	r.LockRequest = r.LockRequest || r.LockRequestSnake
	r.UnlockRequest = r.UnlockRequest || r.UnlockRequestSnake
}

// ReviewConversationRequest - тело POST /admin/conversations/:id/review.
type ReviewConversationRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}
