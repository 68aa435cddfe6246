package handler

import (
	"net/http"

	"github.com/alimtiger/Minibini-sub000/internal/estimates/service"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/transport"
	"github.com/alimtiger/Minibini-sub000/platform/httpkit"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for estimates.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new estimates handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers estimate routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.Generate)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/versions", h.Versions)
	rg.GET("/:id/total", h.Total)
	rg.PATCH("/:id/status", h.Transition)
	rg.POST("/:id/revise", h.Revise)

	rg.GET("/:id/lines", h.ListLines)
	rg.POST("/:id/lines", h.AddLine)
	rg.PUT("/:id/lines/:lineId", h.UpdateLine)
	rg.DELETE("/:id/lines/:lineId", h.DeleteLine)
}

// RegisterJobRoutes registers the job-scoped estimate listing.
func (h *Handler) RegisterJobRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/estimates", h.ListByJob)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	estimate, lines, err := h.svc.Generate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.GeneratedResponse{
		Estimate: transport.ToEstimateResponse(estimate),
		Lines:    transport.ToLineItemResponses(lines),
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEstimateResponse(e))
}

func (h *Handler) ListByJob(c *gin.Context) {
	jobID, ok := parseID(c, "id")
	if !ok {
		return
	}
	estimates, err := h.svc.ListByJob(c.Request.Context(), jobID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEstimateResponses(estimates))
}

func (h *Handler) Versions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	versions, err := h.svc.Versions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEstimateResponses(versions))
}

func (h *Handler) Total(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	total, err := h.svc.Total(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TotalResponse{TotalCents: total})
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.TransitionEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	e, err := h.svc.Transition(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEstimateResponse(e))
}

func (h *Handler) Revise(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	revision, lines, err := h.svc.Revise(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.GeneratedResponse{
		Estimate: transport.ToEstimateResponse(revision),
		Lines:    transport.ToLineItemResponses(lines),
	})
}

func (h *Handler) ListLines(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lines, err := h.svc.Lines(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLineItemResponses(lines))
}

func (h *Handler) AddLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	line, err := h.svc.AddLine(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToLineItemResponse(line))
}

func (h *Handler) UpdateLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(c, "lineId")
	if !ok {
		return
	}
	var req transport.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	line, err := h.svc.UpdateLine(c.Request.Context(), id, lineID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLineItemResponse(line))
}

func (h *Handler) DeleteLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(c, "lineId")
	if !ok {
		return
	}
	if err := h.svc.DeleteLine(c.Request.Context(), id, lineID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
