package verification_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/event"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/storage"
	"github.com/nobridge/nobridge-backend/internal/testutil/memrepo"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *memrepo.Store
	notifier *memrepo.Recorder
	clock    *clock
	policy   entity.BumpPolicy
	submit   *verification.SubmitUseCase
	bump     *verification.BumpUseCase
	mine     *verification.ListMineUseCase
	queue    *verification.ListQueueUseCase
	update   *verification.AdminUpdateUseCase
}

func newFixture() *fixture {
	s := memrepo.New()
	n := &memrepo.Recorder{}
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	p := entity.DefaultBumpPolicy()
	reeval := inquiry.NewReevaluator(s, s.Inquiries(), s.Users(), n)
	return &fixture{
		store:    s,
		notifier: n,
		clock:    c,
		policy:   p,
		submit:   verification.NewSubmitUseCase(s, s.Verifications(), s.Users(), s.Listings(), n, p, c.Now),
		bump:     verification.NewBumpUseCase(s, s.Verifications(), p, c.Now),
		mine:     verification.NewListMineUseCase(s.Verifications(), p, c.Now),
		queue:    verification.NewListQueueUseCase(s.Verifications()),
		update:   verification.NewAdminUpdateUseCase(s, s.Verifications(), s.Users(), s.Listings(), reeval, n, c.Now),
	}
}

func (f *fixture) submitProfile(t *testing.T, user *entity.User) *entity.VerificationRequest {
	t.Helper()
	req, err := f.submit.Execute(context.Background(), verification.SubmitInput{
		UserID:      user.ID,
		Role:        user.Role,
		RequestType: valueobject.RequestTypeUser,
		Reason:      "Хочу открыть переписку с продавцом",
	})
	require.NoError(t, err)
	return req
}

func ptr[T any](v T) *T { return &v }

func TestSubmit_MarksProfilePendingAndNotifiesAdmins(t *testing.T) {
	f := newFixture()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)

	req := f.submitProfile(t, buyer)
	assert.Equal(t, valueobject.QueueStatusNewRequest, req.Status)
	assert.True(t, req.BumpEnabled)
	assert.Nil(t, req.ListingID)

	u, err := f.store.Users().FindByID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusPending, u.VerificationStatus)

	sent := f.notifier.Named(event.VerificationSubmitted)
	require.Len(t, sent, 1)
	assert.True(t, sent[0].Admins)
}

func TestSubmit_DuplicateWithinAndAfterCooldown(t *testing.T) {
	f := newFixture()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	f.submitProfile(t, buyer)
	in := verification.SubmitInput{UserID: buyer.ID, Role: buyer.Role, RequestType: valueobject.RequestTypeUser, Reason: "ещё раз"}

	f.clock.Advance(2 * time.Hour)
	_, err := f.submit.Execute(context.Background(), in)
	require.True(t, apperror.IsCooldown(err))
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 22*time.Hour, appErr.RetryAfter)

	f.clock.Advance(23 * time.Hour)
	_, err = f.submit.Execute(context.Background(), in)
	assert.ErrorIs(t, err, apperror.ErrPendingRequestExists)

	all, err := f.store.Verifications().ListByUser(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmit_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	verified := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	other := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusAnonymous)
	listing := f.store.AddListing(verified, valueobject.ListingStatusActive)

	_, err := f.submit.Execute(ctx, verification.SubmitInput{
		UserID: verified.ID, Role: verified.Role, RequestType: valueobject.RequestTypeUser, Reason: "повторно",
	})
	assert.True(t, apperror.IsInvalidState(err))

	_, err = f.submit.Execute(ctx, verification.SubmitInput{
		UserID: other.ID, Role: other.Role, RequestType: valueobject.RequestTypeListing, ListingID: &listing.ID, Reason: "чужое",
	})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.submit.Execute(ctx, verification.SubmitInput{
		UserID: other.ID, Role: other.Role, RequestType: valueobject.RequestTypeListing, Reason: "без объявления",
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.submit.Execute(ctx, verification.SubmitInput{
		UserID: other.ID, Role: other.Role, RequestType: valueobject.RequestTypeUser, Reason: "   ",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestSubmit_ListingScopeIsIndependent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seller := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	first := f.store.AddListing(seller, valueobject.ListingStatusActive)
	second := f.store.AddListing(seller, valueobject.ListingStatusActive)

	for _, l := range []*entity.Listing{first, second} {
		req, err := f.submit.Execute(ctx, verification.SubmitInput{
			UserID: seller.ID, Role: seller.Role, RequestType: valueobject.RequestTypeListing, ListingID: &l.ID, Reason: "проверьте документы",
		})
		require.NoError(t, err)
		assert.Equal(t, l.ID, *req.ListingID)

		stored, err := f.store.Listings().FindByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, valueobject.ListingStatusPendingVerification, stored.Status)
	}
}

func TestBump_CooldownThenSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	req := f.submitProfile(t, buyer)

	f.clock.Advance(time.Hour)
	_, err := f.bump.Execute(ctx, req.ID, buyer.ID)
	require.True(t, apperror.IsCooldown(err))
	assertNotBumped(t, f, req.ID, 0, nil)

	f.clock.Advance(23 * time.Hour)
	bumped, err := f.bump.Execute(ctx, req.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bumped.BumpCount)
	assert.Equal(t, f.policy.PriorityWeight, bumped.PriorityScore)
	assert.Equal(t, f.clock.Now(), *bumped.LastBumpTime)

	bumpedAt := *bumped.LastBumpTime
	f.clock.Advance(time.Hour)
	_, err = f.bump.Execute(ctx, req.ID, buyer.ID)
	assert.True(t, apperror.IsCooldown(err))
	assertNotBumped(t, f, req.ID, 1, &bumpedAt)

	listed, err := f.mine.Execute(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].Eligibility.CanBump)
	assert.Equal(t, 23, listed[0].Eligibility.HoursUntilBump)
}

// assertNotBumped перечитывает заявку и проверяет, что отказ её не изменил.
func assertNotBumped(t *testing.T, f *fixture, id uuid.UUID, count int, lastBump *time.Time) {
	t.Helper()
	stored, err := f.store.Verifications().FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, count, stored.BumpCount)
	assert.Equal(t, count*f.policy.PriorityWeight, stored.PriorityScore)
	if lastBump == nil {
		assert.Nil(t, stored.LastBumpTime)
		return
	}
	require.NotNil(t, stored.LastBumpTime)
	assert.True(t, lastBump.Equal(*stored.LastBumpTime))
}

func TestBump_OwnerOnlyAndLock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	req := f.submitProfile(t, buyer)
	f.clock.Advance(25 * time.Hour)

	_, err := f.bump.Execute(ctx, req.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{
		RequestID: req.ID, AdminID: uuid.New(), LockRequest: true, LockReason: ptr("ждём звонка"),
	})
	require.NoError(t, err)

	_, err = f.bump.Execute(ctx, req.ID, buyer.ID)
	assert.True(t, apperror.IsForbidden(err))
	assertNotBumped(t, f, req.ID, 0, nil)

	listed, err := f.mine.Execute(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, listed[0].Eligibility.IsAdminLocked)
	assert.Equal(t, entity.BumpBlockedLocked, listed[0].Eligibility.BlockedReason)

	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: req.ID, AdminID: uuid.New(), UnlockRequest: true})
	require.NoError(t, err)
	_, err = f.bump.Execute(ctx, req.ID, buyer.ID)
	assert.NoError(t, err)
}

func TestQueue_BumpedRequestsFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	early := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	late := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)

	earlyReq := f.submitProfile(t, early)
	f.clock.Advance(time.Minute)
	lateReq := f.submitProfile(t, late)

	queue, err := f.queue.Execute(ctx, repository.VerificationQueueFilter{})
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, earlyReq.ID, queue[0].ID)

	f.clock.Advance(25 * time.Hour)
	_, err = f.bump.Execute(ctx, lateReq.ID, late.ID)
	require.NoError(t, err)

	queue, err = f.queue.Execute(ctx, repository.VerificationQueueFilter{})
	require.NoError(t, err)
	assert.Equal(t, lateReq.ID, queue[0].ID)

	approved := valueobject.QueueStatusApproved
	queue, err = f.queue.Execute(ctx, repository.VerificationQueueFilter{Status: &approved})
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestAdminUpdate_ValidatesInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: uuid.New(), LockRequest: true, UnlockRequest: true})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: uuid.New()})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: uuid.New(), AdminNote: ptr("заметка")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdminUpdate_ApproveDisablesBumpAndRecordsNote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	req := f.submitProfile(t, buyer)
	adminID := uuid.New()

	updated, err := f.update.Execute(ctx, verification.AdminUpdateInput{
		RequestID:         req.ID,
		AdminID:           adminID,
		OperationalStatus: ptr(valueobject.QueueStatusApproved),
		ProfileStatus:     ptr(valueobject.VerificationStatusVerified),
		AdminNote:         ptr("документы в порядке"),
	})
	require.NoError(t, err)
	assert.False(t, updated.BumpEnabled)
	require.Len(t, updated.AdminNotes, 1)
	assert.Contains(t, updated.AdminNotes[0], adminID.String())
	assert.Contains(t, updated.AdminNotes[0], "документы в порядке")

	u, err := f.store.Users().FindByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusVerified, u.VerificationStatus)

	sent := f.notifier.Named(event.VerificationUpdated)
	require.Len(t, sent, 1)
	assert.Equal(t, buyer.ID, sent[0].UserID)

	f.clock.Advance(48 * time.Hour)
	_, err = f.bump.Execute(ctx, req.ID, buyer.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAdminUpdate_VerifyingBuyerAdvancesInquiries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	seller := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	listing := f.store.AddListing(seller, valueobject.ListingStatusActive)

	inq, err := inquiry.NewCreateInquiryUseCase(f.store.Listings(), f.store.Inquiries(), f.store.Users(), f.notifier).
		Execute(ctx, inquiry.CreateInquiryInput{ListingID: listing.ID, BuyerID: buyer.ID, BuyerRole: valueobject.RoleBuyer})
	require.NoError(t, err)
	res, err := inquiry.NewEngageInquiryUseCase(f.store, f.store.Inquiries(), f.store.Users(), f.notifier).
		Execute(ctx, inquiry.EngageInput{InquiryID: inq.ID, SellerID: seller.ID})
	require.NoError(t, err)
	require.Equal(t, valueobject.InquiryStatusBuyerPendingVerification, res.Inquiry.Status)

	req := f.submitProfile(t, buyer)
	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		OperationalStatus: ptr(valueobject.QueueStatusApproved),
		ProfileStatus:     ptr(valueobject.VerificationStatusVerified),
	})
	require.NoError(t, err)

	stored, err := f.store.Inquiries().FindByID(ctx, inq.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InquiryStatusReadyForAdminConnection, stored.Status)
	assert.Len(t, f.notifier.Named(event.InquiryReadyForConnection), 3)
}

func TestAdminUpdate_QueueDecisionSetsProfileStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seller := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	listing := f.store.AddListing(seller, valueobject.ListingStatusActive)

	for _, tc := range []struct {
		status valueobject.QueueStatus
		want   valueobject.VerificationStatus
	}{
		{valueobject.QueueStatusDocsUnderReview, valueobject.VerificationStatusPending},
		{valueobject.QueueStatusApproved, valueobject.VerificationStatusVerified},
		{valueobject.QueueStatusRejected, valueobject.VerificationStatusRejected},
	} {
		buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
		inq, err := inquiry.NewCreateInquiryUseCase(f.store.Listings(), f.store.Inquiries(), f.store.Users(), f.notifier).
			Execute(ctx, inquiry.CreateInquiryInput{ListingID: listing.ID, BuyerID: buyer.ID, BuyerRole: valueobject.RoleBuyer})
		require.NoError(t, err)
		_, err = inquiry.NewEngageInquiryUseCase(f.store, f.store.Inquiries(), f.store.Users(), f.notifier).
			Execute(ctx, inquiry.EngageInput{InquiryID: inq.ID, SellerID: seller.ID})
		require.NoError(t, err)

		req := f.submitProfile(t, buyer)
		_, err = f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: req.ID, AdminID: uuid.New(), OperationalStatus: ptr(tc.status)})
		require.NoError(t, err)

		u, err := f.store.Users().FindByID(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, u.VerificationStatus, tc.status)

		stored, err := f.store.Inquiries().FindByID(ctx, inq.ID)
		require.NoError(t, err)
		if tc.want == valueobject.VerificationStatusVerified {
			assert.Equal(t, valueobject.InquiryStatusReadyForAdminConnection, stored.Status)
		} else {
			assert.Equal(t, valueobject.InquiryStatusBuyerPendingVerification, stored.Status)
		}
	}
}

func TestAdminUpdate_ExplicitProfileStatusWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	req := f.submitProfile(t, buyer)

	_, err := f.update.Execute(ctx, verification.AdminUpdateInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		OperationalStatus: ptr(valueobject.QueueStatusRejected),
		ProfileStatus:     ptr(valueobject.VerificationStatusAnonymous),
	})
	require.NoError(t, err)

	u, err := f.store.Users().FindByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusAnonymous, u.VerificationStatus)
}

func TestAdminUpdate_RollsBackOnFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seller := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusAnonymous)
	listing := f.store.AddListing(seller, valueobject.ListingStatusActive)
	req, err := f.submit.Execute(ctx, verification.SubmitInput{
		UserID: seller.ID, Role: seller.Role, RequestType: valueobject.RequestTypeListing, ListingID: &listing.ID, Reason: "проверьте",
	})
	require.NoError(t, err)

	f.store.FailOn("listings.UpdateStatus", apperror.New(apperror.ErrCodeDatabaseError, "сбой"))
	_, err = f.update.Execute(ctx, verification.AdminUpdateInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		OperationalStatus: ptr(valueobject.QueueStatusApproved),
		ProfileStatus:     ptr(valueobject.VerificationStatusVerified),
		AdminNote:         ptr("одобрено"),
	})
	require.Error(t, err)

	stored, err := f.store.Verifications().FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.QueueStatusNewRequest, stored.Status)
	assert.Empty(t, stored.AdminNotes)
	assert.True(t, stored.BumpEnabled)

	u, err := f.store.Users().FindByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusAnonymous, u.VerificationStatus)
	assert.Empty(t, f.notifier.Named(event.VerificationUpdated))
}

func TestAdminUpdate_ListingOutcome(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seller := f.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	approved := f.store.AddListing(seller, valueobject.ListingStatusActive)
	rejected := f.store.AddListing(seller, valueobject.ListingStatusActive)

	for _, tc := range []struct {
		listing *entity.Listing
		status  valueobject.QueueStatus
		want    valueobject.ListingStatus
	}{
		{approved, valueobject.QueueStatusApproved, valueobject.ListingStatusVerifiedAnonymous},
		{rejected, valueobject.QueueStatusRejected, valueobject.ListingStatusActive},
	} {
		req, err := f.submit.Execute(ctx, verification.SubmitInput{
			UserID: seller.ID, Role: seller.Role, RequestType: valueobject.RequestTypeListing, ListingID: &tc.listing.ID, Reason: "проверьте",
		})
		require.NoError(t, err)

		_, err = f.update.Execute(ctx, verification.AdminUpdateInput{RequestID: req.ID, AdminID: uuid.New(), OperationalStatus: &tc.status})
		require.NoError(t, err)

		stored, err := f.store.Listings().FindByID(ctx, tc.listing.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, stored.Status)
	}
}

type fakeStorage struct {
	saveErr   error
	deleteErr error
	deleted   []string
}

func (s *fakeStorage) Save(ctx context.Context, userID, requestID uuid.UUID, originalName string, r io.Reader) (*storage.StoredFile, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &storage.StoredFile{Path: requestID.String() + "/" + originalName, MIME: "application/pdf", Size: int64(len(data))}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return s.deleteErr
}

func TestUploadDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	buyer := f.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	req := f.submitProfile(t, buyer)

	docs := &fakeStorage{}
	log, hook := logtest.NewNullLogger()
	upload := verification.NewUploadDocumentUseCase(f.store.Verifications(), docs, f.clock.Now, log)

	doc, err := upload.Execute(ctx, req.ID, buyer.ID, "passport.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, int64(8), doc.FileSize)
	assert.Len(t, f.store.Documents(req.ID), 1)

	_, err = upload.Execute(ctx, req.ID, uuid.New(), "passport.pdf", bytes.NewReader(nil))
	assert.True(t, apperror.IsForbidden(err))

	docs.saveErr = storage.ErrUnsupportedType
	_, err = upload.Execute(ctx, req.ID, buyer.ID, "script.sh", bytes.NewReader([]byte("#!/bin/sh")))
	assert.True(t, apperror.IsValidation(err))

	docs.saveErr = nil
	f.store.FailOn("verifications.AddDocument", apperror.New(apperror.ErrCodeDatabaseError, "сбой"))
	_, err = upload.Execute(ctx, req.ID, buyer.ID, "selfie.pdf", bytes.NewReader([]byte("%PDF")))
	require.Error(t, err)
	assert.Len(t, docs.deleted, 1)
	assert.Empty(t, hook.AllEntries())

	docs.deleteErr = errors.New("диск недоступен")
	_, err = upload.Execute(ctx, req.ID, buyer.ID, "selfie.pdf", bytes.NewReader([]byte("%PDF")))
	require.Error(t, err)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, docs.deleted[1], entry.Data["path"])
	assert.Equal(t, docs.deleteErr, entry.Data[logrus.ErrorKey])
}
