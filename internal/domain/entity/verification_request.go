package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

// BumpPolicy - параметры повторной подачи и поднятия заявок.
type BumpPolicy struct {
	RequestCooldown time.Duration
	BumpCooldown    time.Duration
	PriorityWeight  int
	MaxBumps        int
}

func DefaultBumpPolicy() BumpPolicy {
	return BumpPolicy{
		RequestCooldown: 24 * time.Hour,
		BumpCooldown:    24 * time.Hour,
		PriorityWeight:  10,
		MaxBumps:        10,
	}
}

// Причины, по которым заявку нельзя поднять.
const (
	BumpBlockedLocked     = "admin_locked"
	BumpBlockedDisabled   = "bump_disabled"
	BumpBlockedNotPending = "not_pending"
	BumpBlockedMaxBumps   = "max_bumps_reached"
	BumpBlockedCooldown   = "cooldown"
	BumpNotBlocked        = ""
)

type VerificationRequest struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ListingID       *uuid.UUID
	RequestType     valueobject.VerificationRequestType
	Status          valueobject.QueueStatus
	Reason          string
	UserNotes       *string
	AdminNotes      []string
	BumpCount       int
	LastBumpTime    *time.Time
	LastRequestTime time.Time
	PriorityScore   int
	BumpEnabled     bool
	AdminLockedAt   *time.Time
	AdminLockedBy   *uuid.UUID
	AdminLockReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BumpEligibility - вычисляемое состояние для клиента.
type BumpEligibility struct {
	CanBump        bool
	HoursUntilBump int
	RetryAfter     time.Duration
	IsAdminLocked  bool
	BlockedReason  string
}

func NewVerificationRequest(
	userID uuid.UUID,
	requestType valueobject.VerificationRequestType,
	listingID *uuid.UUID,
	reason string,
	userNotes *string,
	now time.Time,
) (*VerificationRequest, error) {
	if !requestType.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип заявки на верификацию")
	}
	if requestType == valueobject.RequestTypeListing && listingID == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "для верификации объявления нужен listing_id")
	}
	if requestType == valueobject.RequestTypeUser {
		listingID = nil
	}
	if err := validation.ValidateVerificationReason(reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateOptionalText("заметка", userNotes, validation.MaxUserNotesLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	return &VerificationRequest{
		ID:              uuid.New(),
		UserID:          userID,
		ListingID:       listingID,
		RequestType:     requestType,
		Status:          valueobject.QueueStatusNewRequest,
		Reason:          reason,
		UserNotes:       userNotes,
		AdminNotes:      []string{},
		LastRequestTime: now,
		BumpEnabled:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (r *VerificationRequest) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

func (r *VerificationRequest) IsAdminLocked() bool {
	return r.AdminLockedAt != nil
}

// SubmissionCooldownRemaining - сколько ждать до повторной подачи заявки той же области.
func (r *VerificationRequest) SubmissionCooldownRemaining(policy BumpPolicy, now time.Time) time.Duration {
	next := r.LastRequestTime.Add(policy.RequestCooldown)
	if !now.Before(next) {
		return 0
	}
	return next.Sub(now)
}

// bumpAnchor - от какого момента отсчитывается пауза между поднятиями.
func (r *VerificationRequest) bumpAnchor() time.Time {
	if r.LastBumpTime != nil {
		return *r.LastBumpTime
	}
	return r.LastRequestTime
}

// Eligibility проверяет условия поднятия в фиксированном порядке: блокировка,
// разрешение, статус, лимит, пауза.
func (r *VerificationRequest) Eligibility(policy BumpPolicy, now time.Time) BumpEligibility {
	result := BumpEligibility{IsAdminLocked: r.IsAdminLocked()}
	switch {
	case r.IsAdminLocked():
		result.BlockedReason = BumpBlockedLocked
		return result
	case !r.BumpEnabled:
		result.BlockedReason = BumpBlockedDisabled
		return result
	case !r.Status.IsPending():
		result.BlockedReason = BumpBlockedNotPending
		return result
	case policy.MaxBumps > 0 && r.BumpCount >= policy.MaxBumps:
		result.BlockedReason = BumpBlockedMaxBumps
		return result
	}

	next := r.bumpAnchor().Add(policy.BumpCooldown)
	if now.Before(next) {
		result.RetryAfter = next.Sub(now)
		result.HoursUntilBump = int(math.Ceil(result.RetryAfter.Hours()))
		result.BlockedReason = BumpBlockedCooldown
		return result
	}

	result.CanBump = true
	return result
}

// ValidateBump возвращает ошибку, соответствующую первой нарушенной проверке.
func (r *VerificationRequest) ValidateBump(policy BumpPolicy, now time.Time) error {
	e := r.Eligibility(policy, now)
	switch e.BlockedReason {
	case BumpNotBlocked:
		return nil
	case BumpBlockedLocked:
		return apperror.New(apperror.ErrCodeForbidden, "заявка заблокирована администратором")
	case BumpBlockedDisabled:
		return apperror.New(apperror.ErrCodeForbidden, "поднятие заявки отключено")
	case BumpBlockedNotPending:
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
	case BumpBlockedMaxBumps:
		return apperror.New(apperror.ErrCodeInvalidOperation,
			fmt.Sprintf("достигнут лимит поднятий заявки (%d)", policy.MaxBumps))
	default:
		return apperror.Cooldown(
			fmt.Sprintf("поднять заявку можно будет через %d ч.", e.HoursUntilBump), e.RetryAfter)
	}
}

// Bump поднимает заявку в очереди.
func (r *VerificationRequest) Bump(policy BumpPolicy, now time.Time) error {
	if err := r.ValidateBump(policy, now); err != nil {
		return err
	}
	r.BumpCount++
	r.LastBumpTime = &now
	r.PriorityScore = r.BumpCount * policy.PriorityWeight
	r.UpdatedAt = now
	return nil
}

func (r *VerificationRequest) Lock(adminID uuid.UUID, reason *string, now time.Time) error {
	if err := validation.ValidateOptionalText("причина блокировки", reason, validation.MaxLockReasonLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	r.AdminLockedAt = &now
	r.AdminLockedBy = &adminID
	r.AdminLockReason = reason
	r.UpdatedAt = now
	return nil
}

func (r *VerificationRequest) Unlock(now time.Time) {
	r.AdminLockedAt = nil
	r.AdminLockedBy = nil
	r.AdminLockReason = nil
	r.UpdatedAt = now
}

// SetStatus меняет статус очереди. Поднимать можно только ожидающие заявки,
// в том числе возвращённые администратором из итогового статуса.
func (r *VerificationRequest) SetStatus(status valueobject.QueueStatus, now time.Time) error {
	if !status.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	r.Status = status
	r.BumpEnabled = status.IsPending()
	r.UpdatedAt = now
	return nil
}

// AppendAdminNote добавляет заметку с меткой времени и автором.
func (r *VerificationRequest) AppendAdminNote(adminID uuid.UUID, note string, now time.Time) error {
	if err := validation.ValidateNonEmpty("заметка", note); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("заметка", note, 0, validation.MaxAdminNoteLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	r.AdminNotes = append(r.AdminNotes, fmt.Sprintf("[%s] %s: %s", now.UTC().Format(time.RFC3339), adminID, note))
	r.UpdatedAt = now
	return nil
}

// VerificationDocument - файл, приложенный к заявке.
type VerificationDocument struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	UserID    uuid.UUID
	FilePath  string
	FileType  string
	FileSize  int64
	CreatedAt time.Time
}
