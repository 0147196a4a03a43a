// Package memrepo - хранилище в памяти для тестов сценариев.
// Реализует все репозитории и менеджер транзакций: транзакции выполняются
// по одной, при ошибке состояние откатывается к снимку.
package memrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
)

type txKey struct{}

type state struct {
	users         map[uuid.UUID]entity.User
	listings      map[uuid.UUID]entity.Listing
	inquiries     map[uuid.UUID]entity.Inquiry
	conversations map[uuid.UUID]entity.Conversation
	messages      []entity.Message
	verifications map[uuid.UUID]entity.VerificationRequest
	documents     []entity.VerificationDocument
}

func newState() state {
	return state{
		users:         make(map[uuid.UUID]entity.User),
		listings:      make(map[uuid.UUID]entity.Listing),
		inquiries:     make(map[uuid.UUID]entity.Inquiry),
		conversations: make(map[uuid.UUID]entity.Conversation),
		verifications: make(map[uuid.UUID]entity.VerificationRequest),
	}
}

func (s state) clone() state {
	c := state{
		users:         make(map[uuid.UUID]entity.User, len(s.users)),
		listings:      make(map[uuid.UUID]entity.Listing, len(s.listings)),
		inquiries:     make(map[uuid.UUID]entity.Inquiry, len(s.inquiries)),
		conversations: make(map[uuid.UUID]entity.Conversation, len(s.conversations)),
		messages:      slices.Clone(s.messages),
		verifications: make(map[uuid.UUID]entity.VerificationRequest, len(s.verifications)),
		documents:     slices.Clone(s.documents),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.inquiries {
		c.inquiries[k] = v
	}
	for k, v := range s.conversations {
		c.conversations[k] = v
	}
	for k, v := range s.verifications {
		v.AdminNotes = slices.Clone(v.AdminNotes)
		c.verifications[k] = v
	}
	return c
}

// Store хранит копии сущностей: изменения объекта после сохранения не видны без явного Update.
type Store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	data   state
	faults map[string]error
}

func New() *Store {
	return &Store{data: newState(), faults: make(map[string]error)}
}

// FailOn заставляет операцию op (например "listings.UpdateStatus") вернуть err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	return s.faults[op]
}

// WithinTx реализует repository.TxManager. Вложенные вызовы присоединяются к внешней транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Listings() *ListingRepository {
	return &ListingRepository{s: s}
}

func (s *Store) Inquiries() *InquiryRepository {
	return &InquiryRepository{s: s}
}

func (s *Store) Conversations() *ConversationRepository {
	return &ConversationRepository{s: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{s: s}
}

func (s *Store) Verifications() *VerificationRepository {
	return &VerificationRepository{s: s}
}

// Documents возвращает сохранённые документы заявки.
func (s *Store) Documents(requestID uuid.UUID) []entity.VerificationDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []entity.VerificationDocument
	for _, d := range s.data.documents {
		if d.RequestID == requestID {
			result = append(result, d)
		}
	}
	return result
}
