package memrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

// AddUser сохраняет пользователя с заданной ролью и статусом верификации.
func (s *Store) AddUser(role valueobject.Role, status valueobject.VerificationStatus) *entity.User {
	u := entity.NewUser(uuid.New(), role)
	u.VerificationStatus = status
	s.mu.Lock()
	s.data.users[u.ID] = *u
	s.mu.Unlock()
	return u
}

// AddListing сохраняет объявление продавца в заданном статусе.
func (s *Store) AddListing(seller *entity.User, status valueobject.ListingStatus) *entity.Listing {
	now := time.Now()
	l := &entity.Listing{
		ID:               uuid.New(),
		SellerID:         seller.ID,
		Title:            "Кофейня в центре",
		Industry:         "food",
		Country:          "Kazakhstan",
		Status:           status,
		IsSellerVerified: seller.IsVerified(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.mu.Lock()
	s.data.listings[l.ID] = *l
	s.mu.Unlock()
	return l
}
