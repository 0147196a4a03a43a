package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
)

// VerificationHandler обслуживает заявки пользователя на верификацию.
type VerificationHandler struct {
	submitUC   *verification.SubmitUseCase
	bumpUC     *verification.BumpUseCase
	listMineUC *verification.ListMineUseCase
	uploadUC   *verification.UploadDocumentUseCase
	maxUpload  int64
}

func NewVerificationHandler(
	submitUC *verification.SubmitUseCase,
	bumpUC *verification.BumpUseCase,
	listMineUC *verification.ListMineUseCase,
	uploadUC *verification.UploadDocumentUseCase,
	maxUpload int64,
) *VerificationHandler {
	return &VerificationHandler{
		submitUC:   submitUC,
		bumpUC:     bumpUC,
		listMineUC: listMineUC,
		uploadUC:   uploadUC,
		maxUpload:  maxUpload,
	}
}

// Request POST /verification/request. action=submit подаёт заявку, action=bump поднимает существующую.
func (h *VerificationHandler) Request(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.VerificationRequestBody
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	switch req.Action {
	case dto.VerificationActionBump:
		if req.RequestID == nil {
			common.RespondBadRequest(c, "для поднятия заявки нужен request_id")
			return
		}
		updated, err := h.bumpUC.Execute(c.Request.Context(), *req.RequestID, userID)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewVerificationRequestResponse(updated, false))

	case dto.VerificationActionSubmit, "":
		created, err := h.submitUC.Execute(c.Request.Context(), verification.SubmitInput{
			UserID:      userID,
			Role:        role,
			RequestType: valueobject.VerificationRequestType(req.RequestType),
			ListingID:   req.ListingID,
			Reason:      req.Reason,
			UserNotes:   req.UserNotes,
		})
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewVerificationRequestResponse(created, false))

	default:
		common.RespondBadRequest(c, "action должен быть submit или bump")
	}
}

// ListMine GET /verification/request
func (h *VerificationHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	items, err := h.listMineUC.Execute(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnnotatedRequestResponses(items))
}

// UploadDocument POST /verification/requests/:id/documents, multipart поле file.
func (h *VerificationHandler) UploadDocument(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор заявки")
		return
	}

	if h.maxUpload > 0 {
		// запас на заголовки multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
	}
	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		common.RespondBadRequest(c, "файл слишком большой")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	defer src.Close()

	doc, err := h.uploadUC.Execute(c.Request.Context(), id, userID, file.Filename, src)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewVerificationDocumentResponse(doc))
}
