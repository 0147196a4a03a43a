package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/validation"
)

// Ensure возвращает профиль пользователя, создавая его с ролью из токена при первом обращении.
func Ensure(ctx context.Context, users repository.UserRepository, userID uuid.UUID, role valueobject.Role) (*entity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, err
	}
	if !role.IsValid() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "в токене нет роли пользователя")
	}

	user = entity.NewUser(userID, role)
	if err := users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type GetProfileUseCase struct {
	users repository.UserRepository
}

func NewGetProfileUseCase(users repository.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{users: users}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, role valueobject.Role) (*entity.User, error) {
	return Ensure(ctx, uc.users, userID, role)
}

type UpdateProfileInput struct {
	UserID   uuid.UUID
	Role     valueobject.Role
	FullName *string
	Phone    *string
	Country  *string
}

type UpdateProfileUseCase struct {
	users    repository.UserRepository
	notifier event.Notifier
}

func NewUpdateProfileUseCase(users repository.UserRepository, notifier event.Notifier) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{users: users, notifier: notifier}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, in UpdateProfileInput) (*entity.User, error) {
	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCountry(in.Country); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := Ensure(ctx, uc.users, in.UserID, in.Role)
	if err != nil {
		return nil, err
	}

	user.FullName = in.FullName
	user.Phone = in.Phone
	user.Country = in.Country
	user.UpdatedAt = time.Now()

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(user.ID, event.ProfileUpdated, map[string]any{"user_id": user.ID})
	return user, nil
}
