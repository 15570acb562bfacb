package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/app"
	"ailawyer/internal/model"
	"ailawyer/internal/scoring"
	"ailawyer/internal/transport/http/response"
)

type ValidatorHandler struct {
	validatorService *app.ValidatorService
}

type AnalyzeRequest struct {
	ContractText string `json:"contract_text" binding:"required,max=200000"`
}

// analysisView adds the derived fields clients render directly.
type analysisView struct {
	*model.ContractAnalysis
	ContractPreview string          `json:"contract_preview"`
	Verdict         scoring.Verdict `json:"verdict"`
	Markdown        string          `json:"markdown"`
}

func newAnalysisView(a *model.ContractAnalysis) analysisView {
	return analysisView{
		ContractAnalysis: a,
		ContractPreview:  a.ContractPreview(),
		Verdict:          scoring.VerdictFor(a.ValidityScore),
		Markdown:         scoring.Markdown(a),
	}
}

func NewValidatorHandler(validatorService *app.ValidatorService) *ValidatorHandler {
	return &ValidatorHandler{validatorService: validatorService}
}

func (h *ValidatorHandler) Analyze(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	analysis, err := h.validatorService.Analyze(c.Request.Context(), userID, req.ContractText)
	if err != nil {
		response.FromError(c, err, "contract analysis failed")
		return
	}
	response.OK(c, newAnalysisView(analysis))
}

func (h *ValidatorHandler) AnalyzeStream(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	s, err := h.validatorService.AnalyzeStream(c.Request.Context(), userID, req.ContractText)
	if err != nil {
		response.FromError(c, err, "contract analysis failed")
		return
	}
	writeStream(c, s)
}

func (h *ValidatorHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.validatorService.List(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		response.FromError(c, err, "list analyses failed")
		return
	}
	out := make([]analysisView, len(list))
	for i := range list {
		out[i] = newAnalysisView(&list[i])
	}
	response.OK(c, out)
}

func (h *ValidatorHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	analysis, err := h.validatorService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.FromError(c, err, "get analysis failed")
		return
	}
	response.OK(c, newAnalysisView(analysis))
}
