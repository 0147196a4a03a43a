package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/listing"
)

// ListingHandler обслуживает маршруты объявлений.
type ListingHandler struct {
	createUC       *listing.CreateListingUseCase
	browseUC       *listing.BrowseListingsUseCase
	getUC          *listing.GetListingUseCase
	listMineUC     *listing.ListMyListingsUseCase
	changeStatusUC *listing.ChangeListingStatusUseCase
}

func NewListingHandler(
	createUC *listing.CreateListingUseCase,
	browseUC *listing.BrowseListingsUseCase,
	getUC *listing.GetListingUseCase,
	listMineUC *listing.ListMyListingsUseCase,
	changeStatusUC *listing.ChangeListingStatusUseCase,
) *ListingHandler {
	return &ListingHandler{
		createUC:       createUC,
		browseUC:       browseUC,
		getUC:          getUC,
		listMineUC:     listMineUC,
		changeStatusUC: changeStatusUC,
	}
}

// Browse обрабатывает GET /listings. Продавец скрыт от всех, кроме администратора.
func (h *ListingHandler) Browse(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	filter := repository.ListingFilter{
		Industry: c.Query("industry"),
		Country:  c.Query("country"),
		Limit:    limit,
		Offset:   offset,
	}

	listings, total, err := h.browseUC.Execute(c.Request.Context(), filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	role, _ := common.CurrentUserRole(c)
	c.JSON(http.StatusOK, dto.ListResponse[dto.ListingResponse]{
		Data:   dto.NewListingResponses(listings, role == valueobject.RoleAdmin),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get обрабатывает GET /listings/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор объявления")
		return
	}

	var viewerID *uuid.UUID
	if userID, err := common.CurrentUserID(c); err == nil {
		viewerID = &userID
	}
	role, _ := common.CurrentUserRole(c)

	l, err := h.getUC.Execute(c.Request.Context(), id, viewerID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	showSeller := role == valueobject.RoleAdmin || (viewerID != nil && l.IsOwnedBy(*viewerID))
	c.JSON(http.StatusOK, dto.NewListingResponse(l, showSeller))
}

// Create обрабатывает POST /listings.
func (h *ListingHandler) Create(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	l, err := h.createUC.Execute(c.Request.Context(), userID, role, entity.NewListingInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Industry:         req.Industry,
		Country:          req.Country,
		AskingPrice:      req.AskingPrice,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewListingResponse(l, true))
}

// ListMine обрабатывает GET /listings/my.
func (h *ListingHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	listings, err := h.listMineUC.Execute(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListingResponses(listings, true))
}

// UpdateStatus обрабатывает PUT /listings/:id/status.
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор объявления")
		return
	}

	var req dto.UpdateListingStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	status, err := valueobject.NewListingStatus(req.Status)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	l, err := h.changeStatusUC.Execute(c.Request.Context(), id, userID, role, status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListingResponse(l, true))
}
