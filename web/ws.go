package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/ws"
	"go.uber.org/zap"
)

// SocketHandler WebSocket 升级入口, 升级后连接交给 Dispatcher 托管
type SocketHandler struct {
	dispatcher *ws.Dispatcher
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

var _ Handler = (*SocketHandler)(nil)

func NewSocketHandler(dispatcher *ws.Dispatcher, log *zap.Logger) *SocketHandler {
	return &SocketHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// 跨域策略由 CORS 中间件统一控制
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *SocketHandler) Register(r *gin.Engine) {
	r.GET(constants.WebSocketPath, h.Serve)
}

func (h *SocketHandler) Serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := h.dispatcher.Attach(conn)
	wsConnectionsTotal.Inc()
	h.log.Info("websocket connection established",
		zap.String("connId", connID),
		zap.String("remoteAddr", ctx.Request.RemoteAddr))
}
