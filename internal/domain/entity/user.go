package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

// User - профиль пользователя. ID совпадает с subject из токена провайдера идентификации.
type User struct {
	ID                 uuid.UUID
	Role               valueobject.Role
	VerificationStatus valueobject.VerificationStatus
	FullName           *string
	Phone              *string
	Country            *string
	IsDeleted          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewUser(id uuid.UUID, role valueobject.Role) *User {
	now := time.Now()
	return &User{
		ID:                 id,
		Role:               role,
		VerificationStatus: valueobject.VerificationStatusAnonymous,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == valueobject.RoleAdmin
}

func (u *User) IsVerified() bool {
	return u.VerificationStatus.IsVerified()
}
