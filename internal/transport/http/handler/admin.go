package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/app"
	"ailawyer/internal/model"
	"ailawyer/internal/transport/http/response"
)

const maxUploadSize = 50 << 20 // 50 MB

type AdminHandler struct {
	adminService *app.AdminService
}

func NewAdminHandler(adminService *app.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Upload accepts a multipart "file". The document type is detected from
// its text.
func (h *AdminHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file is required")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBadRequest, "file too large (max 50MB)")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "cannot open file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "cannot read file")
		return
	}

	doc, err := h.adminService.Upload(c.Request.Context(), file.Filename, data)
	if err != nil {
		response.FromError(c, err, "upload failed")
		return
	}
	status := http.StatusCreated
	if doc.Status == model.DocumentPending {
		status = http.StatusAccepted
	}
	c.JSON(status, response.APIResponse{Code: response.CodeOK, Message: "ok", Data: doc})
}

func (h *AdminHandler) Documents(c *gin.Context) {
	docs, err := h.adminService.Documents(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	source := c.Param("source")
	removed, err := h.adminService.Delete(c.Request.Context(), source)
	if err != nil {
		response.FromError(c, err, "delete document failed")
		return
	}
	response.OK(c, gin.H{"source": source, "deleted_chunks": removed})
}
