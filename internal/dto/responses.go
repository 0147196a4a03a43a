package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/usecase/conversation"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
)

// ErrorResponse - единый формат ошибки.
type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code,omitempty"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
}

// ListResponse - страница результатов.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ProfileResponse struct {
	ID                 uuid.UUID `json:"id"`
	Role               string    `json:"role"`
	VerificationStatus string    `json:"verification_status"`
	FullName           *string   `json:"full_name"`
	Phone              *string   `json:"phone"`
	Country            *string   `json:"country"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewProfileResponse(u *entity.User) ProfileResponse {
	return ProfileResponse{
		ID:                 u.ID,
		Role:               string(u.Role),
		VerificationStatus: string(u.VerificationStatus),
		FullName:           u.FullName,
		Phone:              u.Phone,
		Country:            u.Country,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// ListingResponse. SellerID пуст для анонимного просмотра.
type ListingResponse struct {
	ID               uuid.UUID  `json:"id"`
	SellerID         *uuid.UUID `json:"seller_id,omitempty"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	Industry         string     `json:"industry"`
	Country          string     `json:"country"`
	AskingPrice      *float64   `json:"asking_price"`
	Status           string     `json:"status"`
	IsSellerVerified bool       `json:"is_seller_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewListingResponse(l *entity.Listing, showSeller bool) ListingResponse {
	resp := ListingResponse{
		ID:               l.ID,
		Title:            l.Title,
		ShortDescription: l.ShortDescription,
		Industry:         l.Industry,
		Country:          l.Country,
		AskingPrice:      l.AskingPrice,
		Status:           string(l.Status),
		IsSellerVerified: l.IsSellerVerified,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if showSeller {
		sellerID := l.SellerID
		resp.SellerID = &sellerID
	}
	return resp
}

func NewListingResponses(listings []*entity.Listing, showSeller bool) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, NewListingResponse(l, showSeller))
	}
	return out
}

type InquiryResponse struct {
	ID             uuid.UUID  `json:"id"`
	ListingID      uuid.UUID  `json:"listing_id"`
	BuyerID        uuid.UUID  `json:"buyer_id"`
	SellerID       uuid.UUID  `json:"seller_id"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	EngagedAt      *time.Time `json:"engaged_at"`
	FacilitatedAt  *time.Time `json:"facilitated_at"`
	ArchivedAt     *time.Time `json:"archived_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewInquiryResponse(i *entity.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:             i.ID,
		ListingID:      i.ListingID,
		BuyerID:        i.BuyerID,
		SellerID:       i.SellerID,
		Message:        i.Message,
		Status:         string(i.Status),
		ConversationID: i.ConversationID,
		EngagedAt:      i.EngagedAt,
		FacilitatedAt:  i.FacilitatedAt,
		ArchivedAt:     i.ArchivedAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func NewInquiryResponses(inquiries []*entity.Inquiry) []InquiryResponse {
	out := make([]InquiryResponse, 0, len(inquiries))
	for _, i := range inquiries {
		out = append(out, NewInquiryResponse(i))
	}
	return out
}

// EngageResponse - ответ на вовлечение продавца.
type EngageResponse struct {
	Message   string            `json:"message"`
	Inquiry   InquiryResponse   `json:"inquiry"`
	NextSteps inquiry.NextSteps `json:"next_steps"`
}

func NewEngageResponse(r *inquiry.EngageResult) EngageResponse {
	return EngageResponse{
		Message:   r.Message,
		Inquiry:   NewInquiryResponse(r.Inquiry),
		NextSteps: r.NextSteps,
	}
}

type ConversationResponse struct {
	ID              uuid.UUID  `json:"id"`
	InquiryID       uuid.UUID  `json:"inquiry_id"`
	ListingID       uuid.UUID  `json:"listing_id"`
	BuyerID         uuid.UUID  `json:"buyer_id"`
	SellerID        uuid.UUID  `json:"seller_id"`
	Status          string     `json:"status"`
	Facilitated     bool       `json:"facilitated"`
	CanSendMessages bool       `json:"can_send_messages"`
	FacilitatedBy   *uuid.UUID `json:"facilitated_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewConversationResponse(c *entity.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:              c.ID,
		InquiryID:       c.InquiryID,
		ListingID:       c.ListingID,
		BuyerID:         c.BuyerID,
		SellerID:        c.SellerID,
		Status:          string(c.Status),
		Facilitated:     c.Facilitated,
		CanSendMessages: c.CanSendMessages,
		FacilitatedBy:   c.FacilitatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func NewConversationResponses(convs []*entity.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, NewConversationResponse(c))
	}
	return out
}

type FacilitateResponse struct {
	Inquiry      InquiryResponse      `json:"inquiry"`
	Conversation ConversationResponse `json:"conversation"`
}

func NewFacilitateResponse(r *inquiry.FacilitateResult) FacilitateResponse {
	return FacilitateResponse{
		Inquiry:      NewInquiryResponse(r.Inquiry),
		Conversation: NewConversationResponse(r.Conversation),
	}
}

// ConversationStatusResponse - ответ POST /conversations/check.
// Без запроса возвращается только {"exists": false}.
type ConversationStatusResponse struct {
	Exists          bool       `json:"exists"`
	ConversationID  *uuid.UUID `json:"conversationId,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Facilitated     *bool      `json:"facilitated,omitempty"`
	CanSendMessages *bool      `json:"canSendMessages,omitempty"`
	InquiryID       *uuid.UUID `json:"inquiry_id,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func NewConversationStatusResponse(s *conversation.StatusSummary) ConversationStatusResponse {
	if !s.Exists {
		return ConversationStatusResponse{Exists: false}
	}
	status := string(s.Status)
	facilitated := s.Facilitated
	canSend := s.CanSendMessages
	return ConversationStatusResponse{
		Exists:          true,
		ConversationID:  s.ConversationID,
		Status:          &status,
		Facilitated:     &facilitated,
		CanSendMessages: &canSend,
		InquiryID:       s.InquiryID,
		CreatedAt:       s.CreatedAt,
	}
}

type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func NewMessageResponses(messages []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

type VerificationRequestResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	ListingID       *uuid.UUID `json:"listing_id"`
	RequestType     string     `json:"request_type"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason"`
	UserNotes       *string    `json:"user_notes"`
	AdminNotes      []string   `json:"admin_notes,omitempty"`
	BumpCount       int        `json:"bump_count"`
	LastBumpTime    *time.Time `json:"last_bump_time"`
	LastRequestTime time.Time  `json:"last_request_time"`
	PriorityScore   int        `json:"priority_score"`
	BumpEnabled     bool       `json:"bump_enabled"`
	IsAdminLocked   bool       `json:"is_admin_locked"`
	AdminLockedAt   *time.Time `json:"admin_locked_at,omitempty"`
	AdminLockReason *string    `json:"admin_lock_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	CanBump           *bool   `json:"can_bump,omitempty"`
	HoursUntilCanBump *int    `json:"hours_until_can_bump,omitempty"`
	BumpBlockReason   *string `json:"bump_block_reason,omitempty"`
}

// NewVerificationRequestResponse. Заметки администратора видны только администратору.
func NewVerificationRequestResponse(r *entity.VerificationRequest, withAdminNotes bool) VerificationRequestResponse {
	resp := VerificationRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		ListingID:       r.ListingID,
		RequestType:     string(r.RequestType),
		Status:          string(r.Status),
		Reason:          r.Reason,
		UserNotes:       r.UserNotes,
		BumpCount:       r.BumpCount,
		LastBumpTime:    r.LastBumpTime,
		LastRequestTime: r.LastRequestTime,
		PriorityScore:   r.PriorityScore,
		BumpEnabled:     r.BumpEnabled,
		IsAdminLocked:   r.IsAdminLocked(),
		AdminLockedAt:   r.AdminLockedAt,
		AdminLockReason: r.AdminLockReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if withAdminNotes {
		resp.AdminNotes = r.AdminNotes
	}
	return resp
}

func NewAnnotatedRequestResponses(items []verification.AnnotatedRequest) []VerificationRequestResponse {
	out := make([]VerificationRequestResponse, 0, len(items))
	for _, item := range items {
		resp := NewVerificationRequestResponse(item.Request, false)
		canBump := item.Eligibility.CanBump
		hours := item.Eligibility.HoursUntilBump
		reason := item.Eligibility.BlockedReason
		resp.CanBump = &canBump
		resp.HoursUntilCanBump = &hours
		if reason != "" {
			resp.BumpBlockReason = &reason
		}
		out = append(out, resp)
	}
	return out
}

func NewVerificationQueueResponses(items []*entity.VerificationRequest) []VerificationRequestResponse {
	out := make([]VerificationRequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, NewVerificationRequestResponse(r, true))
	}
	return out
}

type VerificationDocumentResponse struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewVerificationDocumentResponse(d *entity.VerificationDocument) VerificationDocumentResponse {
	return VerificationDocumentResponse{
		ID:        d.ID,
		RequestID: d.RequestID,
		FileType:  d.FileType,
		FileSize:  d.FileSize,
		CreatedAt: d.CreatedAt,
	}
}
