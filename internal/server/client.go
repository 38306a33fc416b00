package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService
type Client struct {
	Game     *engine.GameService
	Conn     *websocket.Conn
	Send     chan api.ServerResponse
	EntityID domain.EntityID
}

func NewClient(game *engine.GameService, conn *websocket.Conn) *Client {
	return &Client{
		Game: game,
		Conn: conn,
		Send: make(chan api.ServerResponse, 256),
	}
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "ws_client",
		"entity_id": c.EntityID,
		"remote":    c.Conn.RemoteAddr().String(),
	})
}

// readPump читает команды от клиента.
// Первое сообщение - JOIN {name}, дальше MOVE / STOP / INIT.
func (c *Client) readPump() {
	joined := false
	defer func() {
		if !joined {
			// Сокет закроет writePump, когда допишет ошибку и close-фрейм.
			close(c.Send)
			return
		}
		c.Game.Hub.Unregister(c.EntityID)
		c.Game.Leave(c.EntityID)
		c.log().Info("Client disconnected")
		if err := c.Conn.Close(); err != nil {
			c.log().WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log().WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE (JOIN)
	var joinCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&joinCmd); err != nil {
		c.log().WithError(err).Warn("Handshake failed")
		return
	}
	if domain.ParseAction(joinCmd.Action) != domain.ActionJoin {
		c.reject("first message must be JOIN")
		return
	}
	var payload api.JoinPayload
	if len(joinCmd.Payload) > 0 {
		if err := json.Unmarshal(joinCmd.Payload, &payload); err != nil {
			c.reject("invalid JOIN payload")
			return
		}
	}
	if err := payload.Validate(); err != nil {
		c.reject(err.Error())
		return
	}

	id, err := c.Game.Join(strings.TrimSpace(payload.Name))
	if err != nil {
		c.reject(err.Error())
		return
	}
	c.EntityID = id
	joined = true

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	// Первый снимок после входа придет полным (сетка + препятствия).
	gameUpdates := c.Game.Hub.Register(id)
	go func() {
		for msg := range gameUpdates {
			c.Send <- msg
		}
		close(c.Send)
	}()
	c.log().WithField("name", payload.Name).Info("Client joined")

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().WithError(err).Warn("WS read error")
			}
			return
		}
		if err := c.Game.ProcessCommand(id, cmd); err != nil {
			c.log().WithError(err).WithField("action", cmd.Action).Debug("Command refused")
			c.Game.Hub.SendTo(id, api.ServerResponse{Type: api.MsgTypeError, Error: err.Error()})
		}
	}
}

// reject отвечает ошибкой до входа в игру (канал Send еще наш).
func (c *Client) reject(reason string) {
	c.log().WithField("reason", reason).Warn("Handshake rejected")
	c.Send <- api.ServerResponse{Type: api.MsgTypeError, Error: reason}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log().WithError(err).Debug("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log().WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log().WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log().WithError(err).Debug("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log().WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
