package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/dto"
	"project-tracker-api/internal/response"
	"project-tracker-api/internal/service"
)

// TaskHandler adds the status transition route to task CRUD
type TaskHandler struct {
	*ResourceHandler[domain.Task]
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(svc service.ResourceService[domain.Task], logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		ResourceHandler: NewResourceHandler(svc,
			func() dto.CreateRequest[domain.Task] { return &dto.CreateTaskRequest{} },
			func() dto.UpdateRequest[domain.Task] { return &dto.UpdateTaskRequest{} },
			logger,
		),
	}
}

func (h *TaskHandler) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := h.ResourceHandler.Register(rg)
	g.PATCH("/:id/status", h.UpdateStatus)
	return g
}

// UpdateStatus godoc
// @Summary      Move a task to another status
// @Description  Publishes TASK_UPDATED with status and previousStatus when the status changes
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID (UUID)"
// @Param        request body dto.UpdateTaskStatusRequest true "New status"
// @Success      200 {object} response.SuccessResponse{data=domain.Task}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskStatusRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.service.Update(c.Request.Context(), actor, id, req.ApplyTo)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}
