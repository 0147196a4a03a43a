package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

type ListingFilter struct {
	Industry string
	Country  string
	Limit    int
	Offset   int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	ListBrowsable(ctx context.Context, filter ListingFilter) ([]*entity.Listing, int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error
	// MarkSellerVerified обновляет снимок верификации во всех объявлениях продавца.
	MarkSellerVerified(ctx context.Context, sellerID uuid.UUID, verified bool) error
}
