package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/http/handlers"
	"github.com/nobridge/nobridge-backend/internal/http/middleware"
	"github.com/nobridge/nobridge-backend/internal/storage"
	"github.com/nobridge/nobridge-backend/internal/testutil/memrepo"
	"github.com/nobridge/nobridge-backend/internal/usecase/conversation"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/nobridge/nobridge-backend/internal/usecase/listing"
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
)

const (
	headerUser = "X-Test-User"
	headerRole = "X-Test-Role"
)

// testAuth заменяет проверку JWT: пользователь и роль берутся из заголовков.
func testAuth(c *gin.Context) {
	raw := c.GetHeader(headerUser)
	if raw == "" {
		c.Next()
		return
	}
	c.Set(middleware.ContextUserIDKey, uuid.MustParse(raw))
	c.Set(middleware.ContextRoleKey, valueobject.Role(c.GetHeader(headerRole)))
	c.Next()
}

type api struct {
	t      *testing.T
	store  *memrepo.Store
	engine *gin.Engine
	now    time.Time
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memrepo.New()
	n := &memrepo.Recorder{}
	a := &api{t: t, store: s, now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return a.now }
	policy := entity.DefaultBumpPolicy()

	docs, err := storage.NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)

	reeval := inquiry.NewReevaluator(s, s.Inquiries(), s.Users(), n)
	listingH := handlers.NewListingHandler(
		listing.NewCreateListingUseCase(s.Listings(), s.Users()),
		listing.NewBrowseListingsUseCase(s.Listings()),
		listing.NewGetListingUseCase(s.Listings()),
		listing.NewListMyListingsUseCase(s.Listings()),
		listing.NewChangeListingStatusUseCase(s.Listings(), s.Users()),
	)
	profileH := handlers.NewProfileHandler(profile.NewGetProfileUseCase(s.Users()), profile.NewUpdateProfileUseCase(s.Users(), n))
	inquiryH := handlers.NewInquiryHandler(
		inquiry.NewCreateInquiryUseCase(s.Listings(), s.Inquiries(), s.Users(), n),
		inquiry.NewGetInquiryUseCase(s.Inquiries()),
		inquiry.NewListMyInquiriesUseCase(s.Inquiries()),
		inquiry.NewEngageInquiryUseCase(s, s.Inquiries(), s.Users(), n),
		inquiry.NewArchiveInquiryUseCase(s, s.Inquiries(), s.Conversations(), n),
	)
	convH := handlers.NewConversationHandler(
		conversation.NewCheckConversationStatusUseCase(s, s.Listings(), s.Inquiries(), s.Conversations()),
		conversation.NewListMyConversationsUseCase(s.Conversations()),
		conversation.NewSendMessageUseCase(s.Conversations(), s.Messages(), n),
		conversation.NewListMessagesUseCase(s.Conversations(), s.Messages()),
	)
	verifH := handlers.NewVerificationHandler(
		verification.NewSubmitUseCase(s, s.Verifications(), s.Users(), s.Listings(), n, policy, clock),
		verification.NewBumpUseCase(s, s.Verifications(), policy, clock),
		verification.NewListMineUseCase(s.Verifications(), policy, clock),
		verification.NewUploadDocumentUseCase(s.Verifications(), docs, clock, logrus.New()),
		1<<20,
	)
	adminH := handlers.NewAdminHandler(
		verification.NewListQueueUseCase(s.Verifications()),
		verification.NewAdminUpdateUseCase(s, s.Verifications(), s.Users(), s.Listings(), reeval, n, clock),
		inquiry.NewListEngagementQueueUseCase(s.Inquiries()),
		inquiry.NewFacilitateConnectionUseCase(s, s.Inquiries(), s.Conversations(), n, true),
		inquiry.NewReviewConversationUseCase(s, s.Inquiries(), s.Conversations(), n),
	)

	r := gin.New()
	r.Use(testAuth)
	r.GET("/listings", listingH.Browse)
	r.GET("/listings/:id", listingH.Get)
	r.POST("/listings", listingH.Create)
	r.GET("/profile", profileH.GetMe)
	r.PUT("/profile", profileH.UpdateMe)
	r.POST("/inquiries", inquiryH.Create)
	r.GET("/inquiries/my", inquiryH.ListMy)
	r.POST("/inquiries/:id/engage", inquiryH.Engage)
	r.POST("/inquiries/:id/archive", inquiryH.Archive)
	r.POST("/conversations/check", convH.CheckStatus)
	r.GET("/conversations/:id/messages", convH.ListMessages)
	r.POST("/conversations/:id/messages", convH.SendMessage)
	r.POST("/verification/request", verifH.Request)
	r.GET("/verification/request", verifH.ListMine)
	r.POST("/verification/requests/:id/documents", verifH.UploadDocument)
	r.GET("/admin/verification-queue", adminH.VerificationQueue)
	r.PUT("/admin/verification-queue/:id", adminH.UpdateVerification)
	r.GET("/admin/engagement-queue", adminH.EngagementQueue)
	r.POST("/admin/inquiries/:id/facilitate", adminH.Facilitate)
	a.engine = r
	return a
}

func (a *api) call(method, path string, user *entity.User, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(headerUser, user.ID.String())
		req.Header.Set(headerRole, string(user.Role))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandlers_RequireAuthentication(t *testing.T) {
	a := newAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/inquiries"},
		{http.MethodPost, "/verification/request"},
		{http.MethodGet, "/verification/request"},
		{http.MethodPost, "/conversations/check"},
	} {
		w := a.call(tc.method, tc.path, nil, map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestHandlers_BrowseHidesSellerFromAnonymous(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	a.store.AddListing(seller, valueobject.ListingStatusActive)
	a.store.AddListing(seller, valueobject.ListingStatusInactive)

	w := a.call(http.MethodGet, "/listings", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Total)
	assert.NotContains(t, page.Data[0], "seller_id")
}

func TestHandlers_InvalidIDIsBadRequest(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)

	w := a.call(http.MethodPost, "/inquiries/not-a-uuid/engage", seller, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_SelfInquiryRejected(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	l := a.store.AddListing(seller, valueobject.ListingStatusActive)
	seller.Role = valueobject.RoleBuyer

	w := a.call(http.MethodPost, "/inquiries", seller, map[string]any{"listing_id": l.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_OPERATION")
}

func TestHandlers_EngagementToConversationFlow(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	admin := a.store.AddUser(valueobject.RoleAdmin, valueobject.VerificationStatusVerified)
	l := a.store.AddListing(seller, valueobject.ListingStatusActive)

	// покупатель отправляет запрос
	w := a.call(http.MethodPost, "/inquiries", buyer, map[string]any{"listing_id": l.ID, "message": "Интересует"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inq := decode[map[string]any](t, w)
	inquiryID := inq["id"].(string)
	assert.Equal(t, seller.ID.String(), inq["seller_id"])
	assert.Equal(t, "new_inquiry", inq["status"])

	// продавец откликается, покупатель не верифицирован
	w = a.call(http.MethodPost, "/inquiries/"+inquiryID+"/engage", seller, map[string]any{"response_message": "Добрый день"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	engaged := decode[struct {
		Message   string         `json:"message"`
		Inquiry   map[string]any `json:"inquiry"`
		NextSteps map[string]any `json:"next_steps"`
	}](t, w)
	assert.Equal(t, "seller_engaged_buyer_pending_verification", engaged.Inquiry["status"])
	assert.Equal(t, true, engaged.NextSteps["buyer_verification_required"])
	assert.Equal(t, false, engaged.NextSteps["ready_for_admin_connection"])
	assert.NotEmpty(t, engaged.Message)

	// повторный отклик невозможен
	w = a.call(http.MethodPost, "/inquiries/"+inquiryID+"/engage", seller, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// покупатель подаёт заявку на верификацию
	w = a.call(http.MethodPost, "/verification/request", buyer, map[string]any{
		"action":       "submit",
		"request_type": "user_verification",
		"reason":       "Хочу связаться с продавцом",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode[map[string]any](t, w)["id"].(string)

	// администратор одобряет заявку и профиль
	w = a.call(http.MethodPut, "/admin/verification-queue/"+requestID, admin, map[string]any{
		"operationalStatus": "Approved",
		"profileStatus":     "verified",
		"adminNote":         "Документы в порядке",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "Approved", updated["status"])
	assert.Equal(t, false, updated["bump_enabled"])
	assert.Len(t, updated["admin_notes"], 1)

	// запрос продвинулся и появился в очереди администратора
	w = a.call(http.MethodGet, "/admin/engagement-queue", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[[]map[string]any](t, w)
	require.Len(t, queue, 1)
	assert.Equal(t, "ready_for_admin_connection", queue[0]["status"])

	// до соединения переписки нет
	w = a.call(http.MethodPost, "/conversations/check", buyer, map[string]any{"listing_id": l.ID, "buyer_id": buyer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[map[string]any](t, w)
	assert.Equal(t, true, pending["exists"])
	assert.Equal(t, "pending_approval", pending["status"])
	assert.Equal(t, false, pending["facilitated"])
	assert.Equal(t, false, pending["canSendMessages"])

	// администратор открывает диалог
	w = a.call(http.MethodPost, "/admin/inquiries/"+inquiryID+"/facilitate", admin, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	facilitated := decode[struct {
		Inquiry      map[string]any `json:"inquiry"`
		Conversation map[string]any `json:"conversation"`
	}](t, w)
	conversationID := facilitated.Conversation["id"].(string)
	assert.Equal(t, "connection_facilitated_in_app_chat_opened", facilitated.Inquiry["status"])
	assert.Equal(t, true, facilitated.Conversation["can_send_messages"])

	// повторно открыть нельзя
	w = a.call(http.MethodPost, "/admin/inquiries/"+inquiryID+"/facilitate", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/conversations/check", buyer, map[string]any{"listing_id": l.ID, "buyer_id": buyer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, true, status["exists"])
	assert.Equal(t, "approved", status["status"])
	assert.Equal(t, conversationID, status["conversationId"])
	assert.Equal(t, true, status["facilitated"])
	assert.Equal(t, true, status["canSendMessages"])

	// переписка
	w = a.call(http.MethodPost, "/conversations/"+conversationID+"/messages", buyer, map[string]any{"content": "Здравствуйте!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.call(http.MethodPost, "/conversations/"+conversationID+"/messages", seller, map[string]any{"content": "Добрый день"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.call(http.MethodGet, "/conversations/"+conversationID+"/messages", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	outsider := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusVerified)
	w = a.call(http.MethodGet, "/conversations/"+conversationID+"/messages", outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlers_VerificationCooldownAndBump(t *testing.T) {
	a := newAPI(t)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)

	body := map[string]any{"action": "submit", "request_type": "user_verification", "reason": "Проверьте меня"}
	w := a.call(http.MethodPost, "/verification/request", buyer, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode[map[string]any](t, w)["id"].(string)

	// повторная подача в пределах паузы
	a.now = a.now.Add(2 * time.Hour)
	w = a.call(http.MethodPost, "/verification/request", buyer, body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, strconv.Itoa(22*3600), w.Header().Get("Retry-After"))
	errBody := decode[map[string]any](t, w)
	assert.Equal(t, "COOLDOWN", errBody["code"])
	assert.EqualValues(t, 22*3600, errBody["retry_after_seconds"])

	// список с пометками о возможности поднять
	w = a.call(http.MethodGet, "/verification/request", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]map[string]any](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, false, mine[0]["can_bump"])
	assert.EqualValues(t, 22, mine[0]["hours_until_can_bump"])
	assert.Equal(t, entity.BumpBlockedCooldown, mine[0]["bump_block_reason"])
	assert.NotContains(t, mine[0], "admin_notes")

	bump := map[string]any{"action": "bump", "request_id": requestID}
	w = a.call(http.MethodPost, "/verification/request", buyer, bump)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	a.now = a.now.Add(23 * time.Hour)
	w = a.call(http.MethodPost, "/verification/request", buyer, bump)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bumped := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, bumped["bump_count"])
	assert.EqualValues(t, 10, bumped["priority_score"])

	// после паузы новая заявка той же области конфликтует с активной
	w = a.call(http.MethodPost, "/verification/request", buyer, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// чужую заявку поднять нельзя
	other := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	w = a.call(http.MethodPost, "/verification/request", other, bump)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlers_VerificationRequestValidation(t *testing.T) {
	a := newAPI(t)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)

	w := a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"action": "escalate"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"action": "bump"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"request_type": "unknown", "reason": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_AdminQueueLockBlocksBump(t *testing.T) {
	a := newAPI(t)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	admin := a.store.AddUser(valueobject.RoleAdmin, valueobject.VerificationStatusVerified)

	w := a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"request_type": "user_verification", "reason": "Проверьте"})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := decode[map[string]any](t, w)["id"].(string)

	w = a.call(http.MethodPut, "/admin/verification-queue/"+requestID, admin, map[string]any{"lock_request": true, "lock_reason": "проверяю"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, w)["is_admin_locked"])

	a.now = a.now.Add(48 * time.Hour)
	w = a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"action": "bump", "request_id": requestID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.call(http.MethodPut, "/admin/verification-queue/"+requestID, admin, map[string]any{"operational_status": "Pending Forever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodGet, "/admin/verification-queue?status=New%20Request", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.call(http.MethodGet, "/admin/verification-queue?request_type=bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_CheckWithoutInquiryReportsOnlyExists(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	l := a.store.AddListing(seller, valueobject.ListingStatusActive)

	w := a.call(http.MethodPost, "/conversations/check", buyer, map[string]any{"listing_id": l.ID, "buyer_id": buyer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())
}

func TestHandlers_AdminUpdateAcceptsBothFieldSpellings(t *testing.T) {
	a := newAPI(t)
	admin := a.store.AddUser(valueobject.RoleAdmin, valueobject.VerificationStatusVerified)

	for _, body := range []map[string]any{
		{"operationalStatus": "Docs Under Review", "adminNote": "Смотрю", "lockRequest": true, "lockReason": "проверка"},
		{"operational_status": "Docs Under Review", "admin_note": "Смотрю", "lock_request": true, "lock_reason": "проверка"},
	} {
		buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
		w := a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"request_type": "user_verification", "reason": "Проверьте"})
		require.Equal(t, http.StatusCreated, w.Code)
		requestID := decode[map[string]any](t, w)["id"].(string)

		w = a.call(http.MethodPut, "/admin/verification-queue/"+requestID, admin, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[map[string]any](t, w)
		assert.Equal(t, "Docs Under Review", updated["status"])
		assert.Equal(t, true, updated["is_admin_locked"])
		assert.Len(t, updated["admin_notes"], 1)
	}
}

func TestHandlers_ApprovalWithoutProfileStatusVerifiesBuyer(t *testing.T) {
	a := newAPI(t)
	seller := a.store.AddUser(valueobject.RoleSeller, valueobject.VerificationStatusVerified)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)
	admin := a.store.AddUser(valueobject.RoleAdmin, valueobject.VerificationStatusVerified)
	l := a.store.AddListing(seller, valueobject.ListingStatusActive)

	w := a.call(http.MethodPost, "/inquiries", buyer, map[string]any{"listing_id": l.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	inquiryID := decode[map[string]any](t, w)["id"].(string)
	w = a.call(http.MethodPost, "/inquiries/"+inquiryID+"/engage", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"request_type": "user_verification", "reason": "Проверьте"})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := decode[map[string]any](t, w)["id"].(string)

	w = a.call(http.MethodPut, "/admin/verification-queue/"+requestID, admin, map[string]any{"operationalStatus": "Approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.call(http.MethodGet, "/profile", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "verified", decode[map[string]any](t, w)["verification_status"])

	w = a.call(http.MethodGet, "/admin/engagement-queue", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestHandlers_UploadDocument(t *testing.T) {
	a := newAPI(t)
	buyer := a.store.AddUser(valueobject.RoleBuyer, valueobject.VerificationStatusAnonymous)

	w := a.call(http.MethodPost, "/verification/request", buyer, map[string]any{"request_type": "user_verification", "reason": "Паспорт"})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := decode[map[string]any](t, w)["id"].(string)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "passport.pdf")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/verification/requests/"+requestID+"/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(headerUser, buyer.ID.String())
		req.Header.Set(headerRole, string(buyer.Role))
		rec := httptest.NewRecorder()
		a.engine.ServeHTTP(rec, req)
		return rec
	}

	w = upload([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", decode[map[string]any](t, w)["file_type"])
	assert.Len(t, a.store.Documents(uuid.MustParse(requestID)), 1)

	w = upload([]byte("just some text, not a document"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_ProfileCreatedOnFirstRead(t *testing.T) {
	a := newAPI(t)
	user := &entity.User{ID: uuid.New(), Role: valueobject.RoleSeller}

	w := a.call(http.MethodGet, "/profile", user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[map[string]any](t, w)
	assert.Equal(t, "seller", got["role"])
	assert.Equal(t, "anonymous", got["verification_status"])

	w = a.call(http.MethodPut, "/profile", user, map[string]any{"full_name": "Алия Садыкова", "country": "Kazakhstan"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Алия Садыкова", decode[map[string]any](t, w)["full_name"])
}
