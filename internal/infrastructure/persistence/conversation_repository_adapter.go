package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

const conversationColumns = `id, inquiry_id, listing_id, buyer_id, seller_id, status, facilitated,
	can_send_messages, facilitated_by, created_at, updated_at`

type ConversationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewConversationRepositoryAdapter(db *sqlx.DB) *ConversationRepositoryAdapter {
	return &ConversationRepositoryAdapter{db: db}
}

func (r *ConversationRepositoryAdapter) Create(ctx context.Context, conv *entity.Conversation) error {
	query := `INSERT INTO conversations (id, inquiry_id, listing_id, buyer_id, seller_id, status, facilitated,
			can_send_messages, facilitated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		conv.ID, conv.InquiryID, conv.ListingID, conv.BuyerID, conv.SellerID, conv.Status, conv.Facilitated,
		conv.CanSendMessages, conv.FacilitatedBy, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "беседа для запроса уже создана")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать беседу")
	}
	return nil
}

func (r *ConversationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	return r.findOne(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
}

func (r *ConversationRepositoryAdapter) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	return r.findOne(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ConversationRepositoryAdapter) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Conversation, error) {
	var c conversationRow
	if err := executorFrom(ctx, r.db).GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить беседу")
	}
	return c.toEntity(), nil
}

func (r *ConversationRepositoryAdapter) Update(ctx context.Context, conv *entity.Conversation) error {
	query := `UPDATE conversations SET status = $2, can_send_messages = $3, updated_at = $4 WHERE id = $1`
	res, err := executorFrom(ctx, r.db).ExecContext(ctx, query, conv.ID, conv.Status, conv.CanSendMessages, conv.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить беседу")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить беседу")
	}
	if n == 0 {
		return apperror.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var rows []conversationRow
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE buyer_id = $1 OR seller_id = $1 ORDER BY updated_at DESC`
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить беседы")
	}
	result := make([]*entity.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type conversationRow struct {
	ID              uuid.UUID  `db:"id"`
	InquiryID       uuid.UUID  `db:"inquiry_id"`
	ListingID       uuid.UUID  `db:"listing_id"`
	BuyerID         uuid.UUID  `db:"buyer_id"`
	SellerID        uuid.UUID  `db:"seller_id"`
	Status          string     `db:"status"`
	Facilitated     bool       `db:"facilitated"`
	CanSendMessages bool       `db:"can_send_messages"`
	FacilitatedBy   *uuid.UUID `db:"facilitated_by"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (c *conversationRow) toEntity() *entity.Conversation {
	return &entity.Conversation{
		ID:              c.ID,
		InquiryID:       c.InquiryID,
		ListingID:       c.ListingID,
		BuyerID:         c.BuyerID,
		SellerID:        c.SellerID,
		Status:          valueobject.ConversationStatus(c.Status),
		Facilitated:     c.Facilitated,
		CanSendMessages: c.CanSendMessages,
		FacilitatedBy:   c.FacilitatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

func (r *MessageRepositoryAdapter) Create(ctx context.Context, msg *entity.Message) error {
	query := `INSERT INTO messages (id, conversation_id, sender_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := executorFrom(ctx, r.db).ExecContext(ctx, query, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сообщение")
	}
	return nil
}

func (r *MessageRepositoryAdapter) FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var rows []messageRow
	query := `SELECT id, conversation_id, sender_id, content, created_at FROM messages
		WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := executorFrom(ctx, r.db).SelectContext(ctx, &rows, query, conversationID, limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}
	result := make([]*entity.Message, len(rows))
	for i, row := range rows {
		result[i] = &entity.Message{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			SenderID:       row.SenderID,
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		}
	}
	return result, nil
}

type messageRow struct {
	ID             uuid.UUID `db:"id"`
	ConversationID uuid.UUID `db:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}
