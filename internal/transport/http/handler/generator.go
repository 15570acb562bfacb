package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/app"
	"ailawyer/internal/transport/http/response"
)

type GeneratorHandler struct {
	generatorService *app.GeneratorService
}

type GenerateRequest struct {
	Category     string `json:"category" binding:"required"`
	Requirements string `json:"requirements" binding:"required,max=20000"`
}

func NewGeneratorHandler(generatorService *app.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{generatorService: generatorService}
}

func (h *GeneratorHandler) Categories(c *gin.Context) {
	response.OK(c, h.generatorService.Categories())
}

func (h *GeneratorHandler) Templates(c *gin.Context) {
	templates, err := h.generatorService.Templates(c.Param("category"))
	if err != nil {
		response.FromError(c, err, "list templates failed")
		return
	}
	response.OK(c, templates)
}

func (h *GeneratorHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	s, err := h.generatorService.Generate(c.Request.Context(), app.GenerateInput{
		UserID:       userID,
		Category:     req.Category,
		Requirements: req.Requirements,
	})
	if err != nil {
		response.FromError(c, err, "contract generation failed")
		return
	}
	writeStream(c, s)
}

func (h *GeneratorHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.generatorService.List(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		response.FromError(c, err, "list contracts failed")
		return
	}
	response.OK(c, list)
}

func (h *GeneratorHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	contract, err := h.generatorService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.FromError(c, err, "get contract failed")
		return
	}
	response.OK(c, contract)
}
