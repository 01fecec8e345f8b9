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

// NotificationHandler adds read tracking routes to notification CRUD
type NotificationHandler struct {
	*ResourceHandler[domain.Notification]
	notifications service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		ResourceHandler: NewResourceHandler[domain.Notification](svc,
			func() dto.CreateRequest[domain.Notification] { return &dto.CreateNotificationRequest{} },
			func() dto.UpdateRequest[domain.Notification] { return &dto.UpdateNotificationRequest{} },
			logger,
		),
		notifications: svc,
	}
}

func (h *NotificationHandler) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("/" + domain.KindNotification.Plural())
	g.GET("/unread-count", h.UnreadCount)
	g.POST("/:id/read", h.MarkAsRead)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Description  Only the recipient can mark a notification; other callers get 404
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=domain.Notification}
// @Failure      404 {object} response.ErrorResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	n, err := h.notifications.MarkAsRead(c.Request.Context(), id, userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, n)
}

// UnreadCount godoc
// @Summary      Count the caller's unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.SuccessResponse{data=map[string]int64}
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]int64{"count": count})
}
