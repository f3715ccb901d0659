package movie

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/zhouzirui/movie-catalog/backend/internal/service/catalog"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler answers catalog queries sent as WebSocket messages.
type WebSocketHandler struct {
	catalog  *catalog.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket handler. allowedOrigin "*" or ""
// accepts any origin.
func NewWebSocketHandler(catalogSvc *catalog.Service, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		catalog: catalogSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterWebSocketRoutes registers the WebSocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/movies", h.handleWebSocket)
}

// inboundMessage is {"type":"list"} or {"type":"get","id":"123"}.
type inboundMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go pingLoop(ctx, conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug().Err(err).Msg("websocket read error")
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(readTimeout))

			h.handleMessage(ctx, conn, logger, raw)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, logger *zerolog.Logger, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		sendError(conn, logger, "invalid message")
		return
	}

	var q catalog.Query
	switch msg.Type {
	case "list":
		q = catalog.ListQuery{}
	case "get":
		q = catalog.GetQuery{ID: msg.ID}
	default:
		sendError(conn, logger, "unsupported message type: "+msg.Type)
		return
	}

	body, err := h.catalog.Render(ctx, q)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("catalog query failed")
		}
		sendError(conn, logger, message)
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		logger.Debug().Err(err).Msg("websocket write failed")
	}
}

func sendError(conn *websocket.Conn, logger *zerolog.Logger, message string) {
	body, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode websocket error")
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		logger.Debug().Err(err).Msg("websocket write error failed")
	}
}

// pingLoop keeps the connection alive. WriteControl may run concurrently
// with the reader loop's writes.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
