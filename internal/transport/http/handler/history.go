package handler

import (
	"github.com/gin-gonic/gin"

	"ailawyer/internal/app"
	"ailawyer/internal/history"
	"ailawyer/internal/transport/http/response"
)

type HistoryHandler struct {
	historyService *app.HistoryService
}

func NewHistoryHandler(historyService *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kind, err := history.ParseKind(c.Query("type"))
	if err != nil {
		response.FromError(c, err, "")
		return
	}
	entries, err := h.historyService.Unified(c.Request.Context(), userID, kind, queryLimit(c))
	if err != nil {
		response.FromError(c, err, "list history failed")
		return
	}
	response.OK(c, gin.H{"items": entries, "total": len(entries)})
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kind, err := history.ParseKind(c.Param("type"))
	if err != nil {
		response.FromError(c, err, "")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.historyService.DeleteItem(c.Request.Context(), userID, kind, id); err != nil {
		response.FromError(c, err, "delete history item failed")
		return
	}
	response.OK(c, gin.H{"deleted": true, "type": kind, "id": id})
}
