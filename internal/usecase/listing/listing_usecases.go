package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateListingUseCase struct {
	listings repository.ListingRepository
	users    repository.UserRepository
}

func NewCreateListingUseCase(listings repository.ListingRepository, users repository.UserRepository) *CreateListingUseCase {
	return &CreateListingUseCase{listings: listings, users: users}
}

func (uc *CreateListingUseCase) Execute(ctx context.Context, sellerID uuid.UUID, role valueobject.Role, input entity.NewListingInput) (*entity.Listing, error) {
	seller, err := profile.Ensure(ctx, uc.users, sellerID, role)
	if err != nil {
		return nil, err
	}

	listing, err := entity.NewListing(seller, input)
	if err != nil {
		return nil, err
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

type BrowseListingsUseCase struct {
	listings repository.ListingRepository
}

func NewBrowseListingsUseCase(listings repository.ListingRepository) *BrowseListingsUseCase {
	return &BrowseListingsUseCase{listings: listings}
}

func (uc *BrowseListingsUseCase) Execute(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.listings.ListBrowsable(ctx, filter)
}

type GetListingUseCase struct {
	listings repository.ListingRepository
}

func NewGetListingUseCase(listings repository.ListingRepository) *GetListingUseCase {
	return &GetListingUseCase{listings: listings}
}

// Execute возвращает объявление. Скрытые объявления видны только владельцу и администратору.
func (uc *GetListingUseCase) Execute(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID, viewerRole valueobject.Role) (*entity.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status.IsBrowsable() || viewerRole == valueobject.RoleAdmin {
		return listing, nil
	}
	if viewerID != nil && listing.IsOwnedBy(*viewerID) {
		return listing, nil
	}
	return nil, apperror.ErrListingNotFound
}

type ListMyListingsUseCase struct {
	listings repository.ListingRepository
}

func NewListMyListingsUseCase(listings repository.ListingRepository) *ListMyListingsUseCase {
	return &ListMyListingsUseCase{listings: listings}
}

func (uc *ListMyListingsUseCase) Execute(ctx context.Context, sellerID uuid.UUID) ([]*entity.Listing, error) {
	return uc.listings.ListBySeller(ctx, sellerID)
}

type ChangeListingStatusUseCase struct {
	listings repository.ListingRepository
	users    repository.UserRepository
}

func NewChangeListingStatusUseCase(listings repository.ListingRepository, users repository.UserRepository) *ChangeListingStatusUseCase {
	return &ChangeListingStatusUseCase{listings: listings, users: users}
}

func (uc *ChangeListingStatusUseCase) Execute(ctx context.Context, listingID, actorID uuid.UUID, actorRole valueobject.Role, status valueobject.ListingStatus) (*entity.Listing, error) {
	actor, err := profile.Ensure(ctx, uc.users, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := listing.ChangeStatus(actor, status); err != nil {
		return nil, err
	}

	if err := uc.listings.UpdateStatus(ctx, listing.ID, listing.Status); err != nil {
		return nil, err
	}
	return listing, nil
}
