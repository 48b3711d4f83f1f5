package service

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CrashHub pushes live round events (multiplier updates, crashes,
// cash-outs) to connected players.
type CrashHub struct {
	mu               sync.Mutex
	connections      map[int64]*websocket.Conn
	lastActivityTime map[int64]time.Time
}

func NewCrashHub() *CrashHub {
	hub := &CrashHub{
		connections:      make(map[int64]*websocket.Conn),
		lastActivityTime: make(map[int64]time.Time),
	}
	go hub.cleanupInactiveConnections()
	return hub
}

func (h *CrashHub) cleanupInactiveConnections() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		now := time.Now()
		for userID, lastActivity := range h.lastActivityTime {
			if now.Sub(lastActivity) > 30*time.Minute {
				if conn, ok := h.connections[userID]; ok {
					conn.Close()
					delete(h.connections, userID)
					delete(h.lastActivityTime, userID)
				}
			}
		}
		h.mu.Unlock()
	}
}

func (h *CrashHub) LiveCrashWebsocketHandler(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("Error retrieving user ID: %v", err)
		c.Status(500)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.connections[userID] = conn
	h.lastActivityTime[userID] = time.Now()
	h.mu.Unlock()

	logger.Info("User %d connected to crash WebSocket", userID)

	defer func() {
		h.mu.Lock()
		delete(h.connections, userID)
		delete(h.lastActivityTime, userID)
		h.mu.Unlock()
		conn.Close()
		logger.Info("User %d disconnected from crash WebSocket", userID)
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.mu.Lock()
		h.lastActivityTime[userID] = time.Now()
		h.mu.Unlock()
	}
}

func (h *CrashHub) sendToUser(userID int64, payload gin.H) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.connections[userID]
	if !ok {
		return
	}
	if err := conn.WriteJSON(payload); err != nil {
		logger.Error("Failed to send to user %d: %v", userID, err)
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			conn.Close()
			delete(h.connections, userID)
			delete(h.lastActivityTime, userID)
		}
	}
}

func (h *CrashHub) broadcast(payload gin.H, except int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conn := range h.connections {
		if userID == except {
			continue
		}
		if err := conn.WriteJSON(payload); err != nil {
			logger.Error("Failed to broadcast to user %d: %v", userID, err)
			conn.Close()
			delete(h.connections, userID)
			delete(h.lastActivityTime, userID)
		}
	}
}

// SendMultiplierUpdate streams the running multiplier to the round owner.
func (h *CrashHub) SendMultiplierUpdate(userID int64, multiplier float64) {
	h.sendToUser(userID, gin.H{
		"type":       "multiplier_update",
		"multiplier": multiplier,
		"timestamp":  time.Now().UnixNano() / int64(time.Millisecond),
	})
}

func (h *CrashHub) SendBetPlaced(userID int64, amount, autoCashOut float64) {
	h.sendToUser(userID, gin.H{
		"type":                    "new_bet",
		"amount":                  amount,
		"auto_cashout_multiplier": autoCashOut,
	})
}

func (h *CrashHub) SendCrash(userID int64, crashPoint float64) {
	h.sendToUser(userID, gin.H{
		"type":        "game_crash",
		"crash_point": crashPoint,
	})
}

// BroadcastCashout tells the winner the result and everyone else who won.
func (h *CrashHub) BroadcastCashout(userID int64, multiplier, winAmount float64, isAuto bool) {
	var nickname string
	var user models.User
	if u, err := models.GetUserByID(userID); err == nil {
		user = *u
		nickname = user.Nickname
	}

	h.sendToUser(userID, gin.H{
		"type":               "cashout_result",
		"cashout_multiplier": multiplier,
		"win_amount":         winAmount,
		"is_auto":            isAuto,
	})

	h.broadcast(gin.H{
		"type":               "other_cashout",
		"username":           nickname,
		"cashout_multiplier": multiplier,
		"win_amount":         winAmount,
	}, userID)
}
