package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nobridge/nobridge-backend/internal/dto"
	"github.com/nobridge/nobridge-backend/internal/http/handlers/common"
	"github.com/nobridge/nobridge-backend/internal/usecase/conversation"
)

type ConversationHandler struct {
	checkStatusUC  *conversation.CheckConversationStatusUseCase
	listMyConvsUC  *conversation.ListMyConversationsUseCase
	sendMessageUC  *conversation.SendMessageUseCase
	listMessagesUC *conversation.ListMessagesUseCase
}

func NewConversationHandler(
	checkStatusUC *conversation.CheckConversationStatusUseCase,
	listMyConvsUC *conversation.ListMyConversationsUseCase,
	sendMessageUC *conversation.SendMessageUseCase,
	listMessagesUC *conversation.ListMessagesUseCase,
) *ConversationHandler {
	return &ConversationHandler{
		checkStatusUC:  checkStatusUC,
		listMyConvsUC:  listMyConvsUC,
		sendMessageUC:  sendMessageUC,
		listMessagesUC: listMessagesUC,
	}
}

// CheckStatus обрабатывает POST /conversations/check.
func (h *ConversationHandler) CheckStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CheckConversationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	summary, err := h.checkStatusUC.Execute(c.Request.Context(), req.ListingID, req.BuyerID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewConversationStatusResponse(summary))
}

func (h *ConversationHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	convs, err := h.listMyConvsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewConversationResponses(convs))
}

func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, role, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор диалога")
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.listMessagesUC.Execute(c.Request.Context(), id, userID, role, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageResponses(messages))
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор диалога")
		return
	}

	var req dto.SendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	msg, err := h.sendMessageUC.Execute(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageResponse(msg))
}
