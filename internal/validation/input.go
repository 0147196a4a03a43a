package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinFullNameLength           = 2
	MaxFullNameLength           = 100
	MaxCountryLength            = 100
	MinListingTitleLength       = 3
	MaxListingTitleLength       = 200
	MaxListingDescriptionLength = 5000
	MaxInquiryMessageLength     = 2000
	MinMessageLength            = 1
	MaxMessageLength            = 5000
	MinVerificationReasonLength = 1
	MaxVerificationReasonLength = 2000
	MaxUserNotesLength          = 2000
	MaxAdminNoteLength          = 2000
	MaxLockReasonLength         = 500
)

var (
	fullNameRegex = regexp.MustCompile(`^[\p{L}0-9\s\-'.]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s\-()]{5,20}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateFullName проверяет имя в профиле.
func ValidateFullName(fullName *string) error {
	if fullName == nil || *fullName == "" {
		return nil
	}
	name := strings.TrimSpace(*fullName)
	if err := ValidateLength("имя", name, MinFullNameLength, MaxFullNameLength); err != nil {
		return err
	}
	if !fullNameRegex.MatchString(name) {
		return fmt.Errorf("имя содержит недопустимые символы")
	}
	return nil
}

// ValidatePhone проверяет номер телефона.
func ValidatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}

// ValidateCountry проверяет страну.
func ValidateCountry(country *string) error {
	if country == nil || *country == "" {
		return nil
	}
	return ValidateLength("страна", strings.TrimSpace(*country), 0, MaxCountryLength)
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if err := ValidateNonEmpty("сообщение", content); err != nil {
		return err
	}
	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateVerificationReason проверяет причину заявки на верификацию.
func ValidateVerificationReason(reason string) error {
	if err := ValidateNonEmpty("причина", reason); err != nil {
		return err
	}
	return ValidateLength("причина", strings.TrimSpace(reason), MinVerificationReasonLength, MaxVerificationReasonLength)
}

// ValidateOptionalText проверяет необязательное текстовое поле.
func ValidateOptionalText(fieldName string, value *string, max int) error {
	if value == nil || *value == "" {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}
