package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
)

// ProfileHandler отвечает за работу с профилем.
type ProfileHandler struct {
	getUC    *profile.GetProfileUseCase
	updateUC *profile.UpdateProfileUseCase
}

// NewProfileHandler создаёт экземпляр.
func NewProfileHandler(getUC *profile.GetProfileUseCase, updateUC *profile.UpdateProfileUseCase) *ProfileHandler {
	return &ProfileHandler{getUC: getUC, updateUC: updateUC}
}

// GetMe возвращает профиль текущего пользователя. Профиль создаётся при первом обращении.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	user, err := h.getUC.Execute(c.Request.Context(), userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(user))
}

// UpdateMe обрабатывает PUT /profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.updateUC.Execute(c.Request.Context(), profile.UpdateProfileInput{
		UserID:   userID,
		Role:     role,
		FullName: req.FullName,
		Phone:    req.Phone,
		Country:  req.Country,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(user))
}
