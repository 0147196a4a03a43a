package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	Update(ctx context.Context, conv *entity.Conversation) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error)
}
