package handler

import (
	"net/http"

	"homematch_backend/internal/matching/service"
	"homematch_backend/internal/matching/transport"
	"homematch_backend/internal/scheduler"
	"homematch_backend/platform/httpkit"
	"homematch_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc   *service.Service
	val   *validator.Validator
	sched scheduler.DistributionScheduler
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SetDistributionScheduler enables async distribution runs via the queue.
func (h *Handler) SetDistributionScheduler(sched scheduler.DistributionScheduler) {
	h.sched = sched
}

// RegisterRoutes mounts matching routes for authenticated dashboard users.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:id/preview", h.Preview)
	rg.POST("/leads/:id/auto-assign", h.AutoAssign)
	rg.POST("/leads/:id/assign", h.ManualAssign)
	rg.POST("/distribute", h.Distribute)
	rg.GET("/analytics", h.Analytics)
	rg.GET("/realtors/top", h.TopPerformers)
	rg.GET("/realtors/underutilized", h.Underutilized)
}

func (h *Handler) Preview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	preview, err := h.svc.PreviewMatches(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, preview)
}

func (h *Handler) AutoAssign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	assignment, err := h.svc.AutoAssign(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, assignment)
}

func (h *Handler) ManualAssign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	assignment, err := h.svc.ManualAssign(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, assignment)
}

// Distribute runs a full backlog pass. With ?async=true and a configured
// queue, the run is handed to the background worker instead of blocking the
// request.
func (h *Handler) Distribute(c *gin.Context) {
	if c.Query("async") == "true" && h.sched != nil {
		err := h.sched.EnqueueDistribution(c.Request.Context(), scheduler.DistributeLeadsPayload{
			TriggeredBy: "api",
		})
		if err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "failed to enqueue distribution run", nil)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true})
		return
	}

	run, err := h.svc.DistributeAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, run)
}

func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.svc.Analytics(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, analytics)
}

func (h *Handler) TopPerformers(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	realtors, err := h.svc.TopPerformers(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"realtors": realtors})
}

func (h *Handler) Underutilized(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	realtors, err := h.svc.Underutilized(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"realtors": realtors})
}

func (h *Handler) parseLimit(c *gin.Context) (int, bool) {
	var req transport.LeaderboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return 0, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return 0, false
	}
	return req.Limit, true
}
