package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"project-tracker-api/internal/events"
	"project-tracker-api/internal/middleware"
	"project-tracker-api/internal/response"
)

// WebSocketHandler upgrades authenticated clients onto the event hub
type WebSocketHandler struct {
	hub       *events.Hub
	jwtSecret string
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewWebSocketHandler creates a handler. allowedOrigins follows the CORS rules; empty allows all.
func NewWebSocketHandler(hub *events.Hub, jwtSecret string, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	allowAll := len(allowedOrigins) == 0 || origins["*"]
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || origins[origin]
			},
		},
	}
}

// Serve godoc
// @Summary      Realtime event stream
// @Description  Upgrades to a websocket that receives {"type","payload"} frames for every mutation
// @Tags         realtime
// @Param        token query string true "JWT"
// @Success      101
// @Failure      401 {object} response.ErrorResponse
// @Router       /ws [get]
func (h *WebSocketHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "token query parameter is required")
		return
	}

	userID, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.logger.Debug("WebSocket client connected", zap.String("user_id", userID.String()))
	h.hub.Serve(conn, userID)
}
