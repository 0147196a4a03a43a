package memrepo

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("users.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.data.users[id]
	if !ok || u.IsDeleted {
		return nil, apperror.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindForShare(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("users.Upsert"); err != nil {
		return err
	}
	if existing, ok := r.s.data.users[user.ID]; ok {
		existing.FullName = user.FullName
		existing.Phone = user.Phone
		existing.Country = user.Country
		existing.UpdatedAt = time.Now()
		r.s.data.users[user.ID] = existing
		*user = existing
		return nil
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("users.UpdateVerificationStatus"); err != nil {
		return err
	}
	u, ok := r.s.data.users[id]
	if !ok || u.IsDeleted {
		return apperror.ErrUserNotFound
	}
	u.VerificationStatus = status
	u.UpdatedAt = time.Now()
	r.s.data.users[id] = u
	return nil
}

func (r *UserRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for id, u := range r.s.data.users {
		if u.Role == valueobject.RoleAdmin && !u.IsDeleted {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type ListingRepository struct{ s *Store }

func (r *ListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.listings[listing.ID] = *listing
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.listings[id]
	if !ok {
		return nil, apperror.ErrListingNotFound
	}
	return &l, nil
}

func (r *ListingRepository) ListBrowsable(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Listing
	for _, l := range r.s.data.listings {
		l := l
		if !l.Status.IsBrowsable() {
			continue
		}
		if filter.Industry != "" && l.Industry != filter.Industry {
			continue
		}
		if filter.Country != "" && l.Country != filter.Country {
			continue
		}
		all = append(all, &l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, filter.Limit, filter.Offset), len(all), nil
}

func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Listing
	for _, l := range r.s.data.listings {
		l := l
		if l.SellerID == sellerID {
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("listings.UpdateStatus"); err != nil {
		return err
	}
	l, ok := r.s.data.listings[id]
	if !ok {
		return apperror.ErrListingNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	r.s.data.listings[id] = l
	return nil
}

func (r *ListingRepository) MarkSellerVerified(ctx context.Context, sellerID uuid.UUID, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("listings.MarkSellerVerified"); err != nil {
		return err
	}
	for id, l := range r.s.data.listings {
		if l.SellerID == sellerID {
			l.IsSellerVerified = verified
			r.s.data.listings[id] = l
		}
	}
	return nil
}

type InquiryRepository struct{ s *Store }

func (r *InquiryRepository) Create(ctx context.Context, inq *entity.Inquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.inquiries[inq.ID] = *inq
	return nil
}

func (r *InquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inq, ok := r.s.data.inquiries[id]
	if !ok {
		return nil, apperror.ErrInquiryNotFound
	}
	return &inq, nil
}

func (r *InquiryRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Inquiry, error) {
	return r.FindByID(ctx, id)
}

func (r *InquiryRepository) UpdateState(ctx context.Context, inq *entity.Inquiry, expected valueobject.InquiryStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("inquiries.UpdateState"); err != nil {
		return err
	}
	current, ok := r.s.data.inquiries[inq.ID]
	if !ok || current.Status != expected {
		return apperror.ErrStaleInquiryStatus
	}
	r.s.data.inquiries[inq.ID] = *inq
	return nil
}

func (r *InquiryRepository) FindLatest(ctx context.Context, listingID, buyerID, sellerID uuid.UUID) (*entity.Inquiry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Inquiry
	for _, inq := range r.s.data.inquiries {
		inq := inq
		if inq.ListingID != listingID || inq.BuyerID != buyerID || inq.SellerID != sellerID {
			continue
		}
		if latest == nil || inq.CreatedAt.After(latest.CreatedAt) {
			latest = &inq
		}
	}
	return latest, nil
}

func (r *InquiryRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*entity.Inquiry, error) {
	return r.filter(func(inq entity.Inquiry) bool { return inq.BuyerID == buyerID }), nil
}

func (r *InquiryRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*entity.Inquiry, error) {
	return r.filter(func(inq entity.Inquiry) bool { return inq.SellerID == sellerID }), nil
}

func (r *InquiryRepository) ListByStatus(ctx context.Context, status valueobject.InquiryStatus, limit, offset int) ([]*entity.Inquiry, error) {
	result := r.filter(func(inq entity.Inquiry) bool { return inq.Status == status })
	slices.Reverse(result)
	return page(result, limit, offset), nil
}

func (r *InquiryRepository) LockPendingForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Inquiry, error) {
	result := r.filter(func(inq entity.Inquiry) bool {
		return inq.IsParty(userID) && inq.Status.IsPendingVerification()
	})
	slices.Reverse(result)
	return result, nil
}

// filter возвращает копии, отсортированные от новых к старым.
func (r *InquiryRepository) filter(match func(entity.Inquiry) bool) []*entity.Inquiry {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Inquiry
	for _, inq := range r.s.data.inquiries {
		inq := inq
		if match(inq) {
			result = append(result, &inq)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

type ConversationRepository struct{ s *Store }

func (r *ConversationRepository) Create(ctx context.Context, conv *entity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("conversations.Create"); err != nil {
		return err
	}
	for _, c := range r.s.data.conversations {
		c := c
		if c.InquiryID == conv.InquiryID {
			return apperror.New(apperror.ErrCodeConflict, "беседа для запроса уже создана")
		}
	}
	r.s.data.conversations[conv.ID] = *conv
	return nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.conversations[id]
	if !ok {
		return nil, apperror.ErrConversationNotFound
	}
	return &c, nil
}

func (r *ConversationRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	return r.FindByID(ctx, id)
}

func (r *ConversationRepository) Update(ctx context.Context, conv *entity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.conversations[conv.ID]; !ok {
		return apperror.ErrConversationNotFound
	}
	r.s.data.conversations[conv.ID] = *conv
	return nil
}

func (r *ConversationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Conversation
	for _, c := range r.s.data.conversations {
		c := c
		if c.IsParticipant(userID) {
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.messages = append(r.s.data.messages, *msg)
	return nil
}

func (r *MessageRepository) FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Message
	for i := len(r.s.data.messages) - 1; i >= 0; i-- {
		m := r.s.data.messages[i]
		if m.ConversationID == conversationID {
			result = append(result, &m)
		}
	}
	return page(result, limit, offset), nil
}

type VerificationRepository struct{ s *Store }

func cloneRequest(req entity.VerificationRequest) *entity.VerificationRequest {
	req.AdminNotes = slices.Clone(req.AdminNotes)
	return &req
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *VerificationRepository) Create(ctx context.Context, req *entity.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("verifications.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.data.verifications {
		if existing.UserID == req.UserID && existing.RequestType == req.RequestType &&
			sameScope(existing.ListingID, req.ListingID) && existing.Status.IsPending() {
			return apperror.ErrPendingRequestExists
		}
	}
	r.s.data.verifications[req.ID] = *cloneRequest(*req)
	return nil
}

func (r *VerificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.data.verifications[id]
	if !ok {
		return nil, apperror.ErrVerificationNotFound
	}
	return cloneRequest(req), nil
}

func (r *VerificationRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *VerificationRepository) FindPending(ctx context.Context, userID uuid.UUID, requestType valueobject.VerificationRequestType, listingID *uuid.UUID) (*entity.VerificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.VerificationRequest
	for _, req := range r.s.data.verifications {
		if req.UserID != userID || req.RequestType != requestType || !sameScope(req.ListingID, listingID) || !req.Status.IsPending() {
			continue
		}
		if latest == nil || req.CreatedAt.After(latest.CreatedAt) {
			latest = cloneRequest(req)
		}
	}
	return latest, nil
}

func (r *VerificationRepository) SaveBump(ctx context.Context, req *entity.VerificationRequest, expectedBumpCount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.data.verifications[req.ID]
	if !ok || current.BumpCount != expectedBumpCount || !current.BumpEnabled || current.AdminLockedAt != nil {
		return apperror.ErrStaleVerificationBump
	}
	current.BumpCount = req.BumpCount
	current.LastBumpTime = req.LastBumpTime
	current.PriorityScore = req.PriorityScore
	current.UpdatedAt = req.UpdatedAt
	r.s.data.verifications[req.ID] = current
	return nil
}

func (r *VerificationRepository) Update(ctx context.Context, req *entity.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("verifications.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.verifications[req.ID]; !ok {
		return apperror.ErrVerificationNotFound
	}
	r.s.data.verifications[req.ID] = *cloneRequest(*req)
	return nil
}

func (r *VerificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.VerificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.VerificationRequest
	for _, req := range r.s.data.verifications {
		if req.UserID == userID {
			result = append(result, cloneRequest(req))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *VerificationRepository) ListQueue(ctx context.Context, filter repository.VerificationQueueFilter) ([]*entity.VerificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.VerificationRequest
	for _, req := range r.s.data.verifications {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.RequestType != nil && req.RequestType != *filter.RequestType {
			continue
		}
		result = append(result, cloneRequest(req))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PriorityScore != result[j].PriorityScore {
			return result[i].PriorityScore > result[j].PriorityScore
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

func (r *VerificationRepository) AddDocument(ctx context.Context, doc *entity.VerificationDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("verifications.AddDocument"); err != nil {
		return err
	}
	r.s.data.documents = append(r.s.data.documents, *doc)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
