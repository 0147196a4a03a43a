package apperror

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrCodeCooldown         ErrorCode = "COOLDOWN"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	// RetryAfter заполняется только для COOLDOWN.
	RetryAfter time.Duration
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// RetryAfterSeconds округляет оставшееся ожидание вверх до целых секунд.
func (e *AppError) RetryAfterSeconds() int64 {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int64(math.Ceil(e.RetryAfter.Seconds()))
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Cooldown создаёт ошибку ограничения частоты с точным временем ожидания.
func Cooldown(message string, retryAfter time.Duration) *AppError {
	e := New(ErrCodeCooldown, message)
	e.RetryAfter = retryAfter
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidState, ErrCodeInvalidOperation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeCooldown:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return Is(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return Is(err, ErrCodeValidation)
}

func IsInvalidState(err error) bool {
	return Is(err, ErrCodeInvalidState)
}

func IsCooldown(err error) bool {
	return Is(err, ErrCodeCooldown)
}

var (
	ErrListingNotFound       = New(ErrCodeNotFound, "объявление не найдено")
	ErrInquiryNotFound       = New(ErrCodeNotFound, "запрос не найден")
	ErrConversationNotFound  = New(ErrCodeNotFound, "беседа не найдена")
	ErrVerificationNotFound  = New(ErrCodeNotFound, "заявка на верификацию не найдена")
	ErrUserNotFound          = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized          = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden             = New(ErrCodeForbidden, "недостаточно прав")
	ErrSelfInquiry           = New(ErrCodeInvalidOperation, "нельзя отправить запрос на собственное объявление")
	ErrSelfConversation      = New(ErrCodeInvalidOperation, "нельзя проверить беседу с самим собой")
	ErrSellerNotVerified     = New(ErrCodeForbidden, "продавец должен пройти верификацию")
	ErrPendingRequestExists  = New(ErrCodeConflict, "у вас уже есть активная заявка на верификацию")
	ErrMessagingLocked       = New(ErrCodeInvalidState, "переписка ещё не открыта администратором")
	ErrStaleInquiryStatus    = New(ErrCodeInvalidState, "статус запроса изменился, обновите страницу")
	ErrStaleVerificationBump = New(ErrCodeConflict, "заявка была изменена параллельно, повторите попытку")
)
