package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
)

// AdminHandler - маршруты /admin. Роль проверяется в router через RequireRole.
type AdminHandler struct {
	queueUC      *verification.ListQueueUseCase
	updateUC     *verification.AdminUpdateUseCase
	engagementUC *inquiry.ListEngagementQueueUseCase
	facilitateUC *inquiry.FacilitateConnectionUseCase
	reviewUC     *inquiry.ReviewConversationUseCase
}

func NewAdminHandler(
	queueUC *verification.ListQueueUseCase,
	updateUC *verification.AdminUpdateUseCase,
	engagementUC *inquiry.ListEngagementQueueUseCase,
	facilitateUC *inquiry.FacilitateConnectionUseCase,
	reviewUC *inquiry.ReviewConversationUseCase,
) *AdminHandler {
	return &AdminHandler{
		queueUC:      queueUC,
		updateUC:     updateUC,
		engagementUC: engagementUC,
		facilitateUC: facilitateUC,
		reviewUC:     reviewUC,
	}
}

// VerificationQueue GET /admin/verification-queue?status=&request_type=
func (h *AdminHandler) VerificationQueue(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	filter := repository.VerificationQueueFilter{Limit: limit, Offset: offset}

	if raw := c.Query("status"); raw != "" {
		status, err := valueobject.NewQueueStatus(raw)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("request_type"); raw != "" {
		requestType, err := valueobject.NewVerificationRequestType(raw)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		filter.RequestType = &requestType
	}

	items, err := h.queueUC.Execute(c.Request.Context(), filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVerificationQueueResponses(items))
}

// UpdateVerification PUT /admin/verification-queue/:id
func (h *AdminHandler) UpdateVerification(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор заявки")
		return
	}

	var req dto.AdminVerificationUpdateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	req.Normalize()

	in := verification.AdminUpdateInput{
		RequestID:     id,
		AdminID:       adminID,
		AdminNote:     req.AdminNote,
		LockRequest:   req.LockRequest,
		UnlockRequest: req.UnlockRequest,
		LockReason:    req.LockReason,
	}
	if req.OperationalStatus != nil {
		status, err := valueobject.NewQueueStatus(*req.OperationalStatus)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		in.OperationalStatus = &status
	}
	if req.ProfileStatus != nil {
		status, err := valueobject.NewVerificationStatus(*req.ProfileStatus)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		in.ProfileStatus = &status
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVerificationRequestResponse(updated, true))
}

// EngagementQueue GET /admin/engagement-queue - запросы, готовые к соединению.
func (h *AdminHandler) EngagementQueue(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	inquiries, err := h.engagementUC.Execute(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInquiryResponses(inquiries))
}

// Facilitate POST /admin/inquiries/:id/facilitate
func (h *AdminHandler) Facilitate(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор запроса")
		return
	}

	result, err := h.facilitateUC.Execute(c.Request.Context(), id, adminID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewFacilitateResponse(result))
}

// ReviewConversation POST /admin/conversations/:id/review
func (h *AdminHandler) ReviewConversation(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор диалога")
		return
	}

	var req dto.ReviewConversationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	conv, err := h.reviewUC.Execute(c.Request.Context(), id, *req.Approve)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewConversationResponse(conv))
}
