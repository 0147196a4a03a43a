package valueobject

import "github.com/nobridge/nobridge-backend/internal/pkg/apperror"

type InquiryStatus string

const (
	InquiryStatusNew                       InquiryStatus = "new_inquiry"
	InquiryStatusBuyerPendingVerification  InquiryStatus = "seller_engaged_buyer_pending_verification"
	InquiryStatusSellerPendingVerification InquiryStatus = "seller_engaged_seller_pending_verification"
	InquiryStatusReadyForAdminConnection   InquiryStatus = "ready_for_admin_connection"
	InquiryStatusConnectionFacilitated     InquiryStatus = "connection_facilitated_in_app_chat_opened"
	InquiryStatusArchived                  InquiryStatus = "archived"
)

func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusNew, InquiryStatusBuyerPendingVerification, InquiryStatusSellerPendingVerification,
		InquiryStatusReadyForAdminConnection, InquiryStatusConnectionFacilitated, InquiryStatusArchived:
		return true
	}
	return false
}

func (s InquiryStatus) IsTerminal() bool {
	return s == InquiryStatusArchived
}

// IsPendingVerification сообщает, ждёт ли запрос верификации одной из сторон.
func (s InquiryStatus) IsPendingVerification() bool {
	return s == InquiryStatusBuyerPendingVerification || s == InquiryStatusSellerPendingVerification
}

func NewInquiryStatus(status string) (InquiryStatus, error) {
	s := InquiryStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус запроса")
	}
	return s, nil
}

// InquiryAction - действие, которое может перевести запрос в другой статус.
type InquiryAction string

const (
	InquiryActionEngage     InquiryAction = "engage"
	InquiryActionReevaluate InquiryAction = "reevaluate"
	InquiryActionFacilitate InquiryAction = "facilitate"
	InquiryActionArchive    InquiryAction = "archive"
)

var engagementOutcomes = []InquiryStatus{
	InquiryStatusBuyerPendingVerification,
	InquiryStatusSellerPendingVerification,
	InquiryStatusReadyForAdminConnection,
}

// inquiryTransitions - полная таблица переходов: статус × действие → допустимые целевые статусы.
// Отсутствие пары означает InvalidState.
var inquiryTransitions = map[InquiryStatus]map[InquiryAction][]InquiryStatus{
	InquiryStatusNew: {
		InquiryActionEngage:  engagementOutcomes,
		InquiryActionArchive: {InquiryStatusArchived},
	},
	InquiryStatusBuyerPendingVerification: {
		InquiryActionReevaluate: {InquiryStatusReadyForAdminConnection},
		InquiryActionArchive:    {InquiryStatusArchived},
	},
	InquiryStatusSellerPendingVerification: {
		InquiryActionReevaluate: {InquiryStatusReadyForAdminConnection},
		InquiryActionArchive:    {InquiryStatusArchived},
	},
	InquiryStatusReadyForAdminConnection: {
		InquiryActionFacilitate: {InquiryStatusConnectionFacilitated},
		InquiryActionArchive:    {InquiryStatusArchived},
	},
	InquiryStatusConnectionFacilitated: {
		InquiryActionArchive: {InquiryStatusArchived},
	},
	InquiryStatusArchived: {},
}

// Allows проверяет, допускает ли текущий статус действие вообще.
func (s InquiryStatus) Allows(action InquiryAction) bool {
	_, ok := inquiryTransitions[s][action]
	return ok
}

// CanTransitionTo проверяет конкретный переход по таблице.
func (s InquiryStatus) CanTransitionTo(action InquiryAction, newStatus InquiryStatus) bool {
	for _, status := range inquiryTransitions[s][action] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// EngagementOutcome - таблица решений при вовлечении продавца.
// Сначала проверяется покупатель, затем продавец.
func EngagementOutcome(buyer, seller VerificationStatus) InquiryStatus {
	switch {
	case !buyer.IsVerified():
		return InquiryStatusBuyerPendingVerification
	case !seller.IsVerified():
		return InquiryStatusSellerPendingVerification
	default:
		return InquiryStatusReadyForAdminConnection
	}
}

type ConversationStatus string

const (
	ConversationStatusPendingApproval ConversationStatus = "pending_approval"
	ConversationStatusApproved        ConversationStatus = "approved"
	ConversationStatusRejected        ConversationStatus = "rejected"
)

func (s ConversationStatus) IsValid() bool {
	switch s {
	case ConversationStatusPendingApproval, ConversationStatusApproved, ConversationStatusRejected:
		return true
	}
	return false
}

var inquiryToConversationStatus = map[InquiryStatus]ConversationStatus{
	InquiryStatusNew:                       ConversationStatusPendingApproval,
	InquiryStatusBuyerPendingVerification:  ConversationStatusPendingApproval,
	InquiryStatusSellerPendingVerification: ConversationStatusPendingApproval,
	InquiryStatusReadyForAdminConnection:   ConversationStatusPendingApproval,
	InquiryStatusConnectionFacilitated:     ConversationStatusApproved,
	InquiryStatusArchived:                  ConversationStatusRejected,
}

// ConversationStatus сворачивает статус запроса в один из трёх статусов для клиента.
// Неизвестные значения считаются pending_approval.
func (s InquiryStatus) ConversationStatus() ConversationStatus {
	if status, ok := inquiryToConversationStatus[s]; ok {
		return status
	}
	return ConversationStatusPendingApproval
}
