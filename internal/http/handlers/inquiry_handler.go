package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
)

// InquiryHandler обслуживает запросы покупателей и ответы продавцов.
type InquiryHandler struct {
	createUC  *inquiry.CreateInquiryUseCase
	getUC     *inquiry.GetInquiryUseCase
	listMyUC  *inquiry.ListMyInquiriesUseCase
	engageUC  *inquiry.EngageInquiryUseCase
	archiveUC *inquiry.ArchiveInquiryUseCase
}

func NewInquiryHandler(
	createUC *inquiry.CreateInquiryUseCase,
	getUC *inquiry.GetInquiryUseCase,
	listMyUC *inquiry.ListMyInquiriesUseCase,
	engageUC *inquiry.EngageInquiryUseCase,
	archiveUC *inquiry.ArchiveInquiryUseCase,
) *InquiryHandler {
	return &InquiryHandler{
		createUC:  createUC,
		getUC:     getUC,
		listMyUC:  listMyUC,
		engageUC:  engageUC,
		archiveUC: archiveUC,
	}
}

// Create обрабатывает POST /inquiries.
func (h *InquiryHandler) Create(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateInquiryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	inq, err := h.createUC.Execute(c.Request.Context(), inquiry.CreateInquiryInput{
		ListingID: req.ListingID,
		BuyerID:   userID,
		BuyerRole: role,
		Message:   req.Message,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewInquiryResponse(inq))
}

// ListMy обрабатывает GET /inquiries/my.
func (h *InquiryHandler) ListMy(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	inquiries, err := h.listMyUC.Execute(c.Request.Context(), userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInquiryResponses(inquiries))
}

// Get обрабатывает GET /inquiries/:id.
func (h *InquiryHandler) Get(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор запроса")
		return
	}

	inq, err := h.getUC.Execute(c.Request.Context(), id, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInquiryResponse(inq))
}

// Engage обрабатывает POST /inquiries/:id/engage.
func (h *InquiryHandler) Engage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор запроса")
		return
	}

	// тело необязательно
	var req dto.EngageInquiryRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	result, err := h.engageUC.Execute(c.Request.Context(), inquiry.EngageInput{
		InquiryID:       id,
		SellerID:        userID,
		ResponseMessage: req.ResponseMessage,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEngageResponse(result))
}

// Archive обрабатывает POST /inquiries/:id/archive.
func (h *InquiryHandler) Archive(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор запроса")
		return
	}

	inq, err := h.archiveUC.Execute(c.Request.Context(), id, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInquiryResponse(inq))
}
