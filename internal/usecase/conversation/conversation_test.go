package conversation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/testutil/memrepo"
	"github.com/nobridge/nobridge-backend/internal/usecase/conversation"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	store    *memrepo.Store
	notifier *memrepo.Recorder
	buyer    *entity.User
	seller   *entity.User
	listing  *entity.Listing
	check    *conversation.CheckConversationStatusUseCase
}

func newWorld(t *testing.T, buyerStatus valueobject.VerificationStatus) *world {
	t.Helper()
	s := memrepo.New()
	w := &world{
		store:    s,
		notifier: &memrepo.Recorder{},
		buyer:    s.AddUser(valueobject.RoleBuyer, buyerStatus),
		seller:   s.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified),
		check:    conversation.NewCheckConversationStatusUseCase(s, s.Listings(), s.Inquiries(), s.Conversations()),
	}
	w.listing = s.AddListing(w.seller, valueobject.ListingStatusActive)
	return w
}

func (w *world) inquire(t *testing.T) *entity.Inquiry {
	t.Helper()
	inq, err := inquiry.NewCreateInquiryUseCase(w.store.Listings(), w.store.Inquiries(), w.store.Users(), w.notifier).
		Execute(context.Background(), inquiry.CreateInquiryInput{
			ListingID: w.listing.ID,
			BuyerID:   w.buyer.ID,
			BuyerRole: valueobject.RoleBuyer,
		})
	require.NoError(t, err)
	return inq
}

func (w *world) engage(t *testing.T, inq *entity.Inquiry) {
	t.Helper()
	_, err := inquiry.NewEngageInquiryUseCase(w.store, w.store.Inquiries(), w.store.Users(), w.notifier).
		Execute(context.Background(), inquiry.EngageInput{InquiryID: inq.ID, SellerID: w.seller.ID})
	require.NoError(t, err)
}

func (w *world) facilitate(t *testing.T, inq *entity.Inquiry, autoApprove bool) *entity.Conversation {
	t.Helper()
	res, err := inquiry.NewFacilitateConnectionUseCase(w.store, w.store.Inquiries(), w.store.Conversations(), w.notifier, autoApprove).
		Execute(context.Background(), inq.ID, uuid.New())
	require.NoError(t, err)
	return res.Conversation
}

func TestCheckStatus_FollowsInquiryLifecycle(t *testing.T) {
	w := newWorld(t, valueobject.VerificationStatusVerified)
	ctx := context.Background()

	summary, err := w.check.Execute(ctx, w.listing.ID, w.buyer.ID, w.buyer.ID)
	require.NoError(t, err)
	assert.False(t, summary.Exists)

	inq := w.inquire(t)
	summary, err = w.check.Execute(ctx, w.listing.ID, w.buyer.ID, w.buyer.ID)
	require.NoError(t, err)
	assert.True(t, summary.Exists)
	assert.Equal(t, valueobject.ConversationStatusPendingApproval, summary.Status)
	assert.Nil(t, summary.ConversationID)
	assert.False(t, summary.CanSendMessages)
	assert.Equal(t, inq.ID, *summary.InquiryID)

	w.engage(t, inq)
	conv := w.facilitate(t, inq, true)

	summary, err = w.check.Execute(ctx, w.listing.ID, w.buyer.ID, w.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ConversationStatusApproved, summary.Status)
	assert.Equal(t, conv.ID, *summary.ConversationID)
	assert.True(t, summary.Facilitated)
	assert.True(t, summary.CanSendMessages)
}

func TestCheckStatus_ArchivedInquiryReportsRejected(t *testing.T) {
	w := newWorld(t, valueobject.VerificationStatusAnonymous)
	ctx := context.Background()
	inq := w.inquire(t)

	_, err := inquiry.NewArchiveInquiryUseCase(w.store, w.store.Inquiries(), w.store.Conversations(), w.notifier).
		Execute(ctx, inq.ID, w.buyer.ID, valueobject.RoleBuyer)
	require.NoError(t, err)

	summary, err := w.check.Execute(ctx, w.listing.ID, w.buyer.ID, w.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ConversationStatusRejected, summary.Status)
}

func TestCheckStatus_Rejections(t *testing.T) {
	w := newWorld(t, valueobject.VerificationStatusAnonymous)
	ctx := context.Background()

	_, err := w.check.Execute(ctx, w.listing.ID, w.buyer.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	_, err = w.check.Execute(ctx, w.listing.ID, w.seller.ID, w.seller.ID)
	assert.ErrorIs(t, err, apperror.ErrSelfConversation)

	_, err = w.check.Execute(ctx, uuid.New(), w.buyer.ID, w.buyer.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSendMessage_RequiresOpenConversation(t *testing.T) {
	w := newWorld(t, valueobject.VerificationStatusVerified)
	ctx := context.Background()
	inq := w.inquire(t)
	w.engage(t, inq)
	conv := w.facilitate(t, inq, false)

	send := conversation.NewSendMessageUseCase(w.store.Conversations(), w.store.Messages(), w.notifier)

	_, err := send.Execute(ctx, conv.ID, w.buyer.ID, "Здравствуйте")
	assert.ErrorIs(t, err, apperror.ErrMessagingLocked)

	_, err = inquiry.NewReviewConversationUseCase(w.store, w.store.Inquiries(), w.store.Conversations(), w.notifier).
		Execute(ctx, conv.ID, true)
	require.NoError(t, err)

	msg, err := send.Execute(ctx, conv.ID, w.buyer.ID, "Здравствуйте")
	require.NoError(t, err)
	assert.Equal(t, w.buyer.ID, msg.SenderID)

	sent := w.notifier.Named(event.ChatMessage)
	require.Len(t, sent, 1)
	assert.Equal(t, w.seller.ID, sent[0].UserID)

	_, err = send.Execute(ctx, conv.ID, uuid.New(), "Привет")
	assert.True(t, apperror.IsForbidden(err))

	_, err = send.Execute(ctx, conv.ID, w.seller.ID, "")
	assert.True(t, apperror.IsValidation(err))
}

func TestListMessages_NewestFirstAndAccess(t *testing.T) {
	w := newWorld(t, valueobject.VerificationStatusVerified)
	ctx := context.Background()
	inq := w.inquire(t)
	w.engage(t, inq)
	conv := w.facilitate(t, inq, true)

	send := conversation.NewSendMessageUseCase(w.store.Conversations(), w.store.Messages(), w.notifier)
	for _, text := range []string{"первое", "второе", "третье"} {
		_, err := send.Execute(ctx, conv.ID, w.seller.ID, text)
		require.NoError(t, err)
	}

	list := conversation.NewListMessagesUseCase(w.store.Conversations(), w.store.Messages())
	msgs, err := list.Execute(ctx, conv.ID, w.buyer.ID, valueobject.RoleBuyer, 2, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "третье", msgs[0].Content)

	_, err = list.Execute(ctx, conv.ID, uuid.New(), valueobject.RoleBuyer, 0, 0)
	assert.True(t, apperror.IsForbidden(err))

	all, err := list.Execute(ctx, conv.ID, uuid.New(), valueobject.RoleAdmin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := conversation.NewListMyConversationsUseCase(w.store.Conversations()).Execute(ctx, w.seller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
