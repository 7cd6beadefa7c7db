// Package handler exposes the thin operator console named in spec §6:
// approve a generated CV, authorize a pending application, and watch the
// event stream; it has no route to deny a pending application or reject a
// CV. It is deliberately not a product UI, just those two endpoints and a
// read surface over the pipeline's state (spec's stated Non-goal: "any
// user-facing visual presentation").
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appservice "github.com/jmartinez/canje/modules/applications/service"
	"github.com/jmartinez/canje/modules/eventbus"
	"github.com/jmartinez/canje/modules/humanloop"
	"github.com/jmartinez/canje/modules/pipeline"

	httpPlatform "github.com/jmartinez/canje/internal/platform/http"
)

// OperatorHandler serves the single-operator pipeline console.
type OperatorHandler struct {
	apps     *appservice.ApplicationService
	loop     *humanloop.Controller
	pipeline *pipeline.Pipeline
	bus      *eventbus.Bus
}

func NewOperatorHandler(apps *appservice.ApplicationService, loop *humanloop.Controller, pipe *pipeline.Pipeline, bus *eventbus.Bus) *OperatorHandler {
	return &OperatorHandler{apps: apps, loop: loop, pipeline: pipe, bus: bus}
}

// List godoc
// @Summary List applications
// @Description List applications, optionally filtered by status
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Router /applications [get]
func (h *OperatorHandler) List(c *gin.Context) {
	pagination, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_PAGINATION_PARAMS", "Invalid pagination parameters")
		return
	}
	status := appmodel.Status(c.Query("status"))

	apps, total, err := h.apps.List(c.Request.Context(), status, pagination.Limit, pagination.Offset)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list applications")
		return
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, apps, pagination.Limit, pagination.Offset, total)
}

// Get godoc
// @Summary Get an application
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} model.ApplicationDTO
// @Router /applications/{id} [get]
func (h *OperatorHandler) Get(c *gin.Context) {
	app, err := h.apps.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, app)
}

// Events godoc
// @Summary Get an application's audit log
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} []model.Event
// @Router /applications/{id}/events [get]
func (h *OperatorHandler) Events(c *gin.Context) {
	events, err := h.apps.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, events)
}

// Authorize godoc
// @Summary Authorize a pending review
// @Description Implements the authorization endpoint contract (spec §6): atomic transition to cv_approved, schedules the Submit task.
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} model.ApplicationDTO
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /applications/{id}/authorize [post]
func (h *OperatorHandler) Authorize(c *gin.Context) {
	actor := "operator"
	updated, err := h.loop.Authorize(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		switch err {
		case humanloop.ErrNotPendingReview:
			httpPlatform.RespondWithError(c, http.StatusConflict, "NOT_PENDING_REVIEW", err.Error())
		case appmodel.ErrAuthorizationExpired:
			httpPlatform.RespondWithError(c, http.StatusConflict, string(appmodel.CodeAuthorizationExpired), appmodel.GetErrorMessage(err))
		default:
			httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, updated)
}

// ApproveCV godoc
// @Summary Approve a generated CV
// @Description Implements spec §4.3's cv_ready -> cv_approved edge: advances the application through application_started, fills the external form, and hands it to the Human-Loop Controller.
// @Tags operator
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 202 {object} map[string]string
// @Router /applications/{id}/approve-cv [post]
func (h *OperatorHandler) ApproveCV(c *gin.Context) {
	applicationID := c.Param("id")
	app, err := h.apps.GetByID(c.Request.Context(), applicationID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if app.Status != string(appmodel.StatusCVReady) {
		httpPlatform.RespondWithError(c, http.StatusConflict, "NOT_CV_READY", "application is not cv_ready")
		return
	}

	// Form-filling drives a real browser page at human pacing (spec §4.5);
	// run it off the request goroutine and let the operator poll /events or
	// GET /applications/{id} for the resulting pending_human_review status.
	go func(id string) {
		if err := h.pipeline.ApproveCV(context.Background(), id, "operator"); err != nil {
			h.pipeline.LogApprovalFailure(id, err)
		}
	}(applicationID)

	httpPlatform.RespondWithData(c, http.StatusAccepted, gin.H{"status": "approval_in_progress"})
}

// Stream godoc
// @Summary Event stream
// @Description Server-sent events over the event bus topics named in spec §4.7.
// @Tags operator
// @Security BearerAuth
// @Produce text/event-stream
// @Router /events [get]
func (h *OperatorHandler) Stream(c *gin.Context) {
	topics := []eventbus.Topic{
		eventbus.TopicCVGenerationStarted,
		eventbus.TopicCVGenerationComplete,
		eventbus.TopicCVGenerationError,
		eventbus.TopicApplicationAuthorized,
		eventbus.TopicApplicationRejected,
		eventbus.TopicApplicationSubmitted,
		eventbus.TopicScraperFinished,
		eventbus.TopicScraperError,
		eventbus.TopicReviewReady,
		eventbus.TopicReviewExpiring,
		eventbus.TopicModelPullProgress,
		eventbus.TopicModelPullComplete,
	}

	merged := make(chan eventbus.Event, 256)
	unsubs := make([]func(), 0, len(topics))
	for _, topic := range topics {
		ch, unsubscribe := h.bus.Subscribe(topic)
		unsubs = append(unsubs, unsubscribe)
		go func(ch <-chan eventbus.Event) {
			for ev := range ch {
				select {
				case merged <- ev:
				default:
				}
			}
		}(ch)
	}
	defer func() {
		for _, unsubscribe := range unsubs {
			unsubscribe()
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w http.ResponseWriter) bool {
		select {
		case ev, ok := <-merged:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Topic), ev.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func respondAppError(c *gin.Context, err error) {
	code := appmodel.GetErrorCode(err)
	status := http.StatusInternalServerError
	if code == appmodel.CodeApplicationNotFound {
		status = http.StatusNotFound
	}
	httpPlatform.RespondWithError(c, status, string(code), appmodel.GetErrorMessage(err))
}

// RegisterRoutes registers the operator console routes.
func (h *OperatorHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	apps := router.Group("/applications")
	apps.Use(authMiddleware)
	{
		apps.GET("", h.List)
		apps.GET("/:id", h.Get)
		apps.GET("/:id/events", h.Events)
		apps.POST("/:id/approve-cv", h.ApproveCV)
		apps.POST("/:id/authorize", h.Authorize)
	}

	events := router.Group("/events")
	events.Use(authMiddleware)
	{
		events.GET("", h.Stream)
	}
}
