package handler

import (
	"net/http"
	"time"

	"github.com/blues/dfs/internal/event"
	"github.com/blues/dfs/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域策略与HTTP接口保持一致，网关层负责真正的来源控制
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 资金事件WebSocket处理器
type WsHandler struct {
	hub *event.Hub
}

// NewWsHandler 创建WebSocket处理器
func NewWsHandler(hub *event.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Subscribe 订阅项目资金事件。
// 路径参数为0时订阅所有项目。推送只是刷新提示，
// 客户端断线重连后应通过账本快照接口拉取最新状态
func (h *WsHandler) Subscribe(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Failed to upgrade websocket connection: %v", err)
		return
	}

	sub := h.hub.Subscribe(campaignId)
	logger.Debug("Subscriber %s connected for campaign %d", sub.Id, campaignId)

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

// writeLoop 把订阅队列里的事件推给客户端
func (h *WsHandler) writeLoop(conn *websocket.Conn, sub *event.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("Subscriber %s write failed: %v", sub.Id, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 只用来感知连接断开
func (h *WsHandler) readLoop(conn *websocket.Conn, sub *event.Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
		logger.Debug("Subscriber %s disconnected", sub.Id)
	}()

	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
