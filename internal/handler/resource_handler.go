package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker-api/internal/dto"
	"project-tracker-api/internal/response"
	"project-tracker-api/internal/service"
)

// ResourceHandler serves the CRUD routes of one entity kind
type ResourceHandler[T any] struct {
	service   service.ResourceService[T]
	newCreate func() dto.CreateRequest[T]
	newUpdate func() dto.UpdateRequest[T]
	logger    *zap.Logger
}

// NewResourceHandler creates a handler. The factories return fresh request bodies to bind into.
func NewResourceHandler[T any](
	svc service.ResourceService[T],
	newCreate func() dto.CreateRequest[T],
	newUpdate func() dto.UpdateRequest[T],
	logger *zap.Logger,
) *ResourceHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler[T]{
		service:   svc,
		newCreate: newCreate,
		newUpdate: newUpdate,
		logger:    logger,
	}
}

// Register mounts the collection and item routes under the kind's plural
func (h *ResourceHandler[T]) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("/" + h.service.Kind().Plural())
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

// bind decodes the body and runs cross-field validation
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return false
	}
	if v, ok := req.(dto.Validator); ok {
		if err := v.Validate(); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
			return false
		}
	}
	return true
}

// Create godoc
// @Summary      Create a resource
// @Description  Creates one entity of the kind named by the path and publishes <KIND>_CREATED
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "Plural kind, e.g. projects, tasks, backlog-items"
// @Param        request body object true "Create request of the kind"
// @Success      201 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /{resource} [post]
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	req := h.newCreate()
	if !bind(c, req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), actor, req.ToModel(actor))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, item)
}

// Get godoc
// @Summary      Get a resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "Plural kind"
// @Param        id path string true "ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /{resource}/{id} [get]
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, item)
}

// List godoc
// @Summary      List resources
// @Description  Filters are exact matches on camelCase query parameters such as projectId or status
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "Plural kind"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Success      200 {object} response.SuccessResponse{data=response.PaginatedData}
// @Failure      400 {object} response.ErrorResponse
// @Router       /{resource} [get]
func (h *ResourceHandler[T]) List(c *gin.Context) {
	opts, err := listOptions(c, h.service.Filters())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendPaginated(c, http.StatusOK, items, total, opts.Page, opts.Limit)
}

// Update godoc
// @Summary      Update a resource
// @Description  Applies the fields present in the body and publishes <KIND>_UPDATED
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "Plural kind"
// @Param        id path string true "ID (UUID)"
// @Param        request body object true "Update request of the kind"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /{resource}/{id} [put]
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req := h.newUpdate()
	if !bind(c, req) {
		return
	}

	item, err := h.service.Update(c.Request.Context(), actor, id, req.ApplyTo)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, item)
}

// Delete godoc
// @Summary      Delete a resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "Plural kind"
// @Param        id path string true "ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      404 {object} response.ErrorResponse
// @Router       /{resource}/{id} [delete]
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": h.service.Kind().Label() + " deleted successfully"})
}
