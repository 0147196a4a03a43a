package valueobject

import "github.com/nobridge/nobridge-backend/internal/pkg/apperror"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

func NewRole(role string) (Role, error) {
	r := Role(role)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная роль")
	}
	return r, nil
}

type ListingStatus string

const (
	ListingStatusActive              ListingStatus = "active"
	ListingStatusVerifiedAnonymous   ListingStatus = "verified_anonymous"
	ListingStatusPendingVerification ListingStatus = "pending_verification"
	ListingStatusInactive            ListingStatus = "inactive"
	ListingStatusRejectedByAdmin     ListingStatus = "rejected_by_admin"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusVerifiedAnonymous, ListingStatusPendingVerification,
		ListingStatusInactive, ListingStatusRejectedByAdmin:
		return true
	}
	return false
}

// IsBrowsable - объявление видно в публичном каталоге и принимает запросы.
func (s ListingStatus) IsBrowsable() bool {
	return s == ListingStatusActive || s == ListingStatusVerifiedAnonymous || s == ListingStatusPendingVerification
}

// SellerCanSet - статусы, которые продавец может выставить сам.
func (s ListingStatus) SellerCanSet() bool {
	return s == ListingStatusActive || s == ListingStatusInactive
}

func NewListingStatus(status string) (ListingStatus, error) {
	s := ListingStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус объявления")
	}
	return s, nil
}
