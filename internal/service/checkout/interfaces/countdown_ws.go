package interfaces

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mirae/internal/pkg/logger"
	"mirae/internal/service/checkout/application"
	"mirae/internal/service/checkout/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// CountdownWSHandler 把银行转账的倒计时实时推送给前端。
// 每个连接订阅所属会话的计时器，每次读数变化推一帧；连接断开即退订，
// 推送侧永远不会反向阻塞计时器。
type CountdownWSHandler struct {
	service *application.CheckoutService
}

func NewCountdownWSHandler(service *application.CheckoutService) *CountdownWSHandler {
	return &CountdownWSHandler{service: service}
}

func (h *CountdownWSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/countdown", h.serveWs)
}

type countdownFrame struct {
	Remaining int    `json:"remaining"`
	Display   string `json:"display"`
	Active    bool   `json:"active"`
	Urgent    bool   `json:"urgent"`
}

func (h *CountdownWSHandler) serveWs(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}

	countdown, err := h.service.CountdownFor(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &countdownClient{
		conn:      conn,
		countdown: countdown,
		sub:       countdown.Subscribe(),
		done:      make(chan struct{}),
	}
	go client.readPump()
	go client.writePump()
}

// countdownClient 是一个WebSocket连接的代表
type countdownClient struct {
	conn      *websocket.Conn
	countdown *domain.Countdown
	sub       chan domain.CountdownSnapshot
	done      chan struct{}
}

// readPump 只负责消费心跳和感知断连。
func (c *countdownClient) readPump() {
	defer close(c.done)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *countdownClient) writePump() {
	defer func() {
		c.countdown.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	// 先推一帧当前读数，避免前端等到下一秒才有显示
	if err := c.writeSnapshot(c.countdown.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-c.done:
			return
		case snap, ok := <-c.sub:
			if !ok {
				return
			}
			if err := c.writeSnapshot(snap); err != nil {
				return
			}
		}
	}
}

func (c *countdownClient) writeSnapshot(snap domain.CountdownSnapshot) error {
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(countdownFrame{
		Remaining: snap.Remaining,
		Display:   domain.FormatMMSS(snap.Remaining),
		Active:    snap.Active,
		Urgent:    snap.Active && snap.Remaining <= domain.UrgentThresholdSeconds,
	})
}
