package workflow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wf := rg.Group("/boreholes/:id/workflow")
	{
		wf.POST("", h.Create)
		wf.GET("", h.Get)
		wf.POST("/transitions", h.Transition)
		wf.PUT("/assignee", h.Assign)
		wf.DELETE("/assignee", h.Unassign)
		wf.GET("/changes", h.ListChanges)
	}
}

type workflowResponse struct {
	*Workflow
	NextTriggers []Trigger `json:"next_triggers"`
}

func (h *Handler) respond(c *gin.Context, status int, wf *Workflow) {
	c.JSON(status, workflowResponse{Workflow: wf, NextTriggers: h.service.NextTriggers(wf)})
}

func (h *Handler) Create(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	wf, err := h.service.CreateWorkflow(c.Request.Context(), boreholeID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, wf)
}

func (h *Handler) Get(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	wf, err := h.service.GetWorkflow(c.Request.Context(), boreholeID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, wf)
}

type transitionBody struct {
	Trigger string `json:"trigger" binding:"required"`
	Comment string `json:"comment"`
}

func (h *Handler) Transition(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trigger is required"})
		return
	}

	trigger, err := ParseTrigger(body.Trigger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.Transition(c.Request.Context(), TransitionRequest{
		BoreholeID: boreholeID,
		Trigger:    trigger,
		Comment:    body.Comment,
		ActorID:    actorFromContext(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, wf)
}

type assignBody struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

func (h *Handler) Assign(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.service.Assign(c.Request.Context(), boreholeID, body.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Unassign(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	if err := h.service.Unassign(c.Request.Context(), boreholeID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListChanges(c *gin.Context) {
	boreholeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid borehole id"})
		return
	}

	changes, err := h.service.ListChanges(c.Request.Context(), boreholeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, changes)
}

// actorFromContext reads the authenticated user set by the auth middleware.
// Transitions without an authenticated actor are recorded as system-initiated.
func actorFromContext(c *gin.Context) *uuid.UUID {
	raw, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

func writeError(c *gin.Context, err error) {
	var ite *InvalidTransitionError
	var ve *ValidationError

	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.As(err, &ite):
		c.JSON(http.StatusConflict, gin.H{
			"error":   ite.Error(),
			"status":  ite.From.String(),
			"trigger": string(ite.Trigger),
		})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
