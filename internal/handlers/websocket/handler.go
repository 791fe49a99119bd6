package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/utils"
)

// WebSocketHandler accepts browser sockets and bridges them upstream.
type WebSocketHandler struct {
	logger            *Logger.Logger
	config            *config.Settings
	compliments       ComplimentSource
	connectionManager *ConnectionManager
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. compliments may be
// nil when no session store is configured.
func NewWebSocketHandler(
	cfg *config.Settings,
	compliments ComplimentSource,
	logger *Logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		logger:            logger,
		config:            cfg,
		compliments:       compliments,
		connectionManager: NewConnectionManager(logger),
		upgrader: websocket.Upgrader{
			// kiosk pages are served from arbitrary origins
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers WebSocket routes. guards run before the upgrade.
func (h *WebSocketHandler) RegisterRoutes(router gin.IRouter, guards ...gin.HandlerFunc) {
	bridge := append(append([]gin.HandlerFunc{}, guards...), h.HandleBridge)
	router.GET("/", bridge...)
	router.GET("/ws", bridge...)
	router.GET("/ws/stats", h.HandleStats)
	router.GET("/ws/stats/:id", h.HandleBridgeStats)
	if h.config.Debug {
		router.GET("/ws-echo", h.HandleEcho)
	}
}

// HandleBridge upgrades the request and relays it to the realtime service.
// @Summary Realtime voice bridge
// @Description Upgrades to a WebSocket relayed to the realtime voice service. Binary frames are PCM16 audio; text frames are forwarded verbatim.
// @Tags Realtime
// @Param sessionId query string true "Client session id shared with /vision"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]string "Missing sessionId"
// @Failure 426 {object} map[string]string "Expected WebSocket upgrade"
// @Failure 500 {object} map[string]string "Server configuration error"
// @Router /ws [get]
func (h *WebSocketHandler) HandleBridge(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusUpgradeRequired, gin.H{"error": "Expected WebSocket upgrade"})
		return
	}

	sessionID := utils.FirstNonEmpty(c.Query("sessionId"), c.GetHeader("x-session-id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sessionId"})
		return
	}

	if h.config.Providers.OpenAI.APIKey == "" {
		h.logger.Errorf("rejecting bridge for session %s: OpenAI API key not configured", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Server configuration error",
			"details": "OPENAI_API_KEY is not set",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	bridge := NewBridge(sessionID, conn, h.compliments, OptionsFromConfig(h.config), h.logger)
	if !h.connectionManager.Register(bridge) {
		bridge.Close(ReasonServerShutdown)
		return
	}
	defer h.connectionManager.Unregister(bridge.ID)

	bridge.Run(c.Request.Context())
}

// HandleStats reports live bridges.
// @Summary Bridge statistics
// @Description Lists live realtime bridges with relay counters
// @Tags Realtime
// @Produce json
// @Success 200 {object} Stats
// @Router /ws/stats [get]
func (h *WebSocketHandler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.connectionManager.GetStats())
}

// HandleBridgeStats reports one live bridge by connection id.
// @Summary Single bridge statistics
// @Tags Realtime
// @Produce json
// @Param id path string true "Bridge connection id"
// @Success 200 {object} BridgeStats
// @Failure 400 {object} map[string]string "Invalid bridge id"
// @Failure 404 {object} map[string]string "Bridge not found"
// @Router /ws/stats/{id} [get]
func (h *WebSocketHandler) HandleBridgeStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bridge id"})
		return
	}
	bridge, ok := h.connectionManager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bridge not found"})
		return
	}
	c.JSON(http.StatusOK, bridge.Stats())
}

// HandleEcho echoes text frames back prefixed with "Echo: ". Debug only.
func (h *WebSocketHandler) HandleEcho(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusUpgradeRequired, gin.H{"error": "Expected WebSocket upgrade"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Errorf("echo read error: %v", err)
			}
			return
		}
		if messageType == websocket.TextMessage {
			data = append([]byte("Echo: "), data...)
		}
		if err := conn.WriteMessage(messageType, data); err != nil {
			return
		}
	}
}

// Close shuts down every live bridge.
func (h *WebSocketHandler) Close(timeout time.Duration) {
	h.connectionManager.Close(timeout)
}

// ActiveBridges is the number of bridges currently registered.
func (h *WebSocketHandler) ActiveBridges() int {
	return h.connectionManager.Count()
}

func (h *WebSocketHandler) Stats() Stats {
	return h.connectionManager.GetStats()
}
