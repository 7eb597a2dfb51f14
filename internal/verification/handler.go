package verification

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the submission and review flows over HTTP.
type Handler struct {
	service  *Service
	workflow *ReviewWorkflow
	effects  *EffectRunner
}

func NewHandler(service *Service, workflow *ReviewWorkflow, effects *EffectRunner) *Handler {
	return &Handler{service: service, workflow: workflow, effects: effects}
}

// RegisterRoutes wires the submission and review endpoints. The
// reviewerGuard middleware restricts review decisions to reviewer roles.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, reviewerGuard gin.HandlerFunc) {
	subs := rg.Group("/submissions")
	{
		subs.POST("", h.Submit)
		subs.GET("/:id", h.Get)
		subs.POST("/:id/approve", reviewerGuard, h.Approve)
		subs.POST("/:id/reject", reviewerGuard, h.Reject)
	}
	projects := rg.Group("/projects/:projectId")
	{
		projects.GET("/review-queue", reviewerGuard, h.ReviewQueue)
		projects.GET("/dashboard", h.Dashboard)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
		return
	}

	taskID, err := uuid.Parse(c.PostForm("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_id"})
		return
	}

	submitterID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	req := SubmitRequest{
		TaskID:      taskID,
		SubmitterID: submitterID,
		Kind:        SubmissionKind(c.PostForm("kind")),
		PhotoName:   file.Filename,
		SubmittedAt: time.Now(),
	}
	if req.Kind == "" {
		req.Kind = KindTaskPhoto
	}

	// The submission day is keyed to the worker's clock, not the server's.
	if sentAt := c.PostForm("submitted_at"); sentAt != "" {
		t, err := time.Parse(time.RFC3339, sentAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submitted_at, want RFC3339"})
			return
		}
		req.SubmittedAt = t
	}

	if qty := c.PostForm("quantity"); qty != "" {
		q, err := strconv.ParseFloat(qty, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
			return
		}
		req.Quantity = &q
	}
	if itemID := c.PostForm("inventory_item_id"); itemID != "" {
		id, err := uuid.Parse(itemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory_item_id"})
			return
		}
		req.InventoryItemID = &id
	}
	if equipmentID := c.PostForm("equipment_id"); equipmentID != "" {
		id, err := uuid.Parse(equipmentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment_id"})
			return
		}
		req.EquipmentID = &id
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	req.Photo = f

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	sub, err := h.service.GetSubmission(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	reviewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sub, effects, err := h.workflow.Approve(c.Request.Context(), id, reviewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Side effects run after the decision is durable; their failures are
	// reported but never roll back the approval.
	var warnings []string
	if err := h.effects.Run(c.Request.Context(), sub.ProjectID, effects); err != nil {
		warnings = append(warnings, err.Error())
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub, "warnings": warnings})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	reviewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, effects, err := h.workflow.Reject(c.Request.Context(), id, reviewerID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	var warnings []string
	if err := h.effects.Run(c.Request.Context(), sub.ProjectID, effects); err != nil {
		warnings = append(warnings, err.Error())
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub, "warnings": warnings})
}

func (h *Handler) ReviewQueue(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	pending, err := h.service.ReviewQueue(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pending)
}

func (h *Handler) Dashboard(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	groups, err := h.service.Dashboard(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

func respondError(c *gin.Context, err error) {
	var denied *EligibilityDeniedError
	var validation *ValidationError
	var transition *InvalidStateTransitionError

	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusConflict, gin.H{"error": denied.Error(), "reason": denied.Reason})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": transition.Error()})
	case errors.Is(err, ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
