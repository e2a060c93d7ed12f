package handler

import (
	"net/http"
	"time"

	"manu4/config"
	"manu4/internal/auth"
	"manu4/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationsWS upgrades to WebSocket for the notification channel. The
// connection starts unauthenticated; a `?token=` JWT authenticates it
// immediately, otherwise the client sends an authenticate message.
func NotificationsWS(cfg *config.JWTConfig, registry *ws.Registry, store ws.NotificationStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := ws.NewClient(256)
		session := ws.NewSession(client, registry, store, log)
		defer func() {
			session.Close()
			client.Close()
		}()

		go writePump(client, conn)

		_ = client.Write([]byte(`{"type":"connected"}`))

		if token := c.Query("token"); token != "" {
			claims, err := auth.ParseToken(cfg, token)
			if err != nil {
				_ = client.Write([]byte(`{"type":"error","message":"invalid token"}`))
			} else {
				session.Authenticate(claims.UserID)
			}
		}

		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			session.HandleMessage(raw)
		}
	}
}

// writePump copies frames from the client buffer to the connection and keeps
// the transport alive with pings.
func writePump(client *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
