package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/app"
	"ailawyer/internal/prompt"
	"ailawyer/internal/transport/http/response"
)

type LawyerHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required,max=8000"`
	SessionID uint   `json:"session_id"`
	Mode      string `json:"mode" binding:"omitempty,chatmode"`
}

func NewLawyerHandler(chatService *app.ChatService) *LawyerHandler {
	return &LawyerHandler{chatService: chatService}
}

func (h *LawyerHandler) Chat(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	s, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		UserID:    userID,
		SessionID: req.SessionID,
		Mode:      req.Mode,
		Message:   req.Message,
	})
	if err != nil {
		response.FromError(c, err, "chat failed")
		return
	}
	writeStream(c, s)
}

func (h *LawyerHandler) Modes(c *gin.Context) {
	response.OK(c, gin.H{"default": prompt.DefaultMode, "modes": prompt.Modes()})
}

func (h *LawyerHandler) ListSessions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "list sessions failed")
		return
	}
	response.OK(c, sessions)
}

func (h *LawyerHandler) GetSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.chatService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.FromError(c, err, "get session failed")
		return
	}
	response.OK(c, detail)
}

func (h *LawyerHandler) DeleteSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.chatService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		response.FromError(c, err, "delete session failed")
		return
	}
	response.OK(c, gin.H{"deleted_session_id": sessionID})
}
