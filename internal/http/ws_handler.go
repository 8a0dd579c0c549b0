package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trading-relay/internal/domain"
	"trading-relay/internal/metrics"
	"trading-relay/internal/service"
)

const (
	maxFrameBytes     = 1 << 20
	closeGracePeriod  = time.Second
	nonTextFrameError = "invalid message format: expected a text frame"
)

type frameHandler interface {
	HandleFrame(ctx context.Context, conn service.Connection, raw []byte) domain.OutboundEnvelope
}

// WSHandler atiende GET /ws: una conexión por cliente, un frame de salida por frame de entrada.
type WSHandler struct {
	logger   *zap.Logger
	relay    frameHandler
	metrics  *metrics.Metrics
	origins  originSet
	upgrader websocket.Upgrader
}

// NewWSHandler crea el handler; allowedOrigins vacío acepta cualquier Origin.
func NewWSHandler(logger *zap.Logger, relay frameHandler, allowedOrigins []string, m *metrics.Metrics) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WSHandler{
		logger:  logger,
		relay:   relay,
		metrics: m,
		origins: newOriginSet(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // clientes que no son navegador
	}
	return h.origins.allows(origin)
}

// Serve maneja GET /ws.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sc := service.Connection{ID: uuid.NewString(), ClientKey: c.ClientIP()}
	if principal, ok := GetPrincipal(c); ok {
		sc.ClientKey = principal.Subject
	}
	log := h.logger.With(zap.String("conn_id", sc.ID))

	h.metrics.ConnectionOpened()
	defer h.metrics.ConnectionClosed()
	log.Info("websocket connected", zap.String("client", sc.ClientKey))

	h.loop(c.Request.Context(), conn, sc, log)
	h.close(conn, log)
}

// loop procesa frames en serie hasta que falle el transporte.
// Errores de parseo o de completion viajan como envelopes y no cierran la conexión.
func (h *WSHandler) loop(ctx context.Context, conn *websocket.Conn, sc service.Connection, log *zap.Logger) {
	conn.SetReadLimit(maxFrameBytes)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket closed unexpectedly", zap.Error(err))
			} else {
				log.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		var out domain.OutboundEnvelope
		if msgType != websocket.TextMessage {
			h.metrics.FrameProcessed("invalid")
			out = domain.NewErrorEnvelope(nonTextFrameError)
		} else {
			out = h.relay.HandleFrame(ctx, sc, data)
		}

		if err := conn.WriteJSON(out); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *WSHandler) close(conn *websocket.Conn, log *zap.Logger) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)); err != nil && err != websocket.ErrCloseSent {
		log.Debug("websocket close handshake skipped", zap.Error(err))
	}
	_ = conn.Close()
	log.Info("websocket disconnected")
}
