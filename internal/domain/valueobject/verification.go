package valueobject

import "github.com/nobridge/nobridge-backend/internal/pkg/apperror"

// VerificationStatus - статус верификации профиля пользователя.
type VerificationStatus string

const (
	VerificationStatusAnonymous VerificationStatus = "anonymous"
	VerificationStatusPending   VerificationStatus = "pending_verification"
	VerificationStatusVerified  VerificationStatus = "verified"
	VerificationStatusRejected  VerificationStatus = "rejected"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusAnonymous, VerificationStatusPending, VerificationStatusVerified, VerificationStatusRejected:
		return true
	}
	return false
}

func (s VerificationStatus) IsVerified() bool {
	return s == VerificationStatusVerified
}

func NewVerificationStatus(status string) (VerificationStatus, error) {
	s := VerificationStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус верификации профиля")
	}
	return s, nil
}

// QueueStatus - операционный статус заявки в очереди администратора.
type QueueStatus string

const (
	QueueStatusNewRequest        QueueStatus = "New Request"
	QueueStatusContacted         QueueStatus = "Contacted"
	QueueStatusDocsUnderReview   QueueStatus = "Docs Under Review"
	QueueStatusMoreInfoRequested QueueStatus = "More Info Requested"
	QueueStatusApproved          QueueStatus = "Approved"
	QueueStatusRejected          QueueStatus = "Rejected"
)

// PendingQueueStatuses перечисляет статусы, в которых заявка считается активной.
var PendingQueueStatuses = []QueueStatus{
	QueueStatusNewRequest,
	QueueStatusContacted,
	QueueStatusDocsUnderReview,
	QueueStatusMoreInfoRequested,
}

func (s QueueStatus) IsValid() bool {
	switch s {
	case QueueStatusNewRequest, QueueStatusContacted, QueueStatusDocsUnderReview,
		QueueStatusMoreInfoRequested, QueueStatusApproved, QueueStatusRejected:
		return true
	}
	return false
}

func (s QueueStatus) IsPending() bool {
	for _, pending := range PendingQueueStatuses {
		if s == pending {
			return true
		}
	}
	return false
}

func NewQueueStatus(status string) (QueueStatus, error) {
	s := QueueStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}

type VerificationRequestType string

const (
	RequestTypeUser    VerificationRequestType = "user_verification"
	RequestTypeListing VerificationRequestType = "listing_verification"
)

func (t VerificationRequestType) IsValid() bool {
	return t == RequestTypeUser || t == RequestTypeListing
}

func NewVerificationRequestType(value string) (VerificationRequestType, error) {
	t := VerificationRequestType(value)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип заявки на верификацию")
	}
	return t, nil
}
