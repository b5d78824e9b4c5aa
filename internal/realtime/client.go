package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
	handleTimeout  = 10 * time.Second
)

// Client is one websocket connection. Read and Write are its two pumps
// and must each run in their own goroutine.
type Client struct {
	conn     *websocket.Conn
	svc      *Service
	log      zerolog.Logger
	send     chan []byte
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(conn *websocket.Conn, svc *Service, l zerolog.Logger) *Client {
	return &Client{
		conn: conn,
		svc:  svc,
		log:  l,
		send: make(chan []byte, sendBufferSize),
		stop: make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Debug().Msg("write exiting")
	}()

	for {
		select {
		case frame := <-c.send:
			if !c.sendMessage(websocket.TextMessage, frame) {
				return
			}
		case <-c.stop:
			c.sendMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Debug().Msg("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws read")
			}
			break
		}

		var evt ClientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.log.Debug().Err(err).Msg("error parsing frame")
			c.queue(errorFrame("invalid message format"))
			continue
		}

		c.handle(&evt)
	}
}

func (c *Client) handle(evt *ClientEvent) {
	switch evt.Event {
	case EventJoinUserRoom:
		var userId UserId
		if err := json.Unmarshal(evt.Data, &userId); err != nil || userId == "" {
			c.queue(errorFrame("invalid user id"))
			return
		}
		c.svc.RegisterConnection(c, string(userId))
	case EventSendMessage:
		var msg SendMessage
		if err := json.Unmarshal(evt.Data, &msg); err != nil {
			c.queue(errorFrame("invalid message format"))
			return
		}
		if msg.Sender == "" {
			msg.Sender = types.SenderUser
		}
		if msg.Sender == types.SenderBot {
			c.queue(errorFrame(ErrInvalidSender.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()

		if _, err := c.svc.SendChatMessage(ctx, string(msg.UserId), msg.Sender, msg.Text); err != nil {
			c.log.Error().Err(err).Str("user_id", string(msg.UserId)).Msg("send message")
			switch {
			case errors.Is(err, ErrMissingUser), errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrInvalidSender):
				c.queue(errorFrame(err.Error()))
			default:
				c.queue(errorFrame("failed to send message"))
			}
		}
	default:
		c.queue(errorFrame("unknown event"))
	}
}

// queue never blocks. Frames for a client whose buffer is full are
// dropped.
func (c *Client) queue(frame []byte) bool {
	select {
	case c.send <- frame:
	default:
		c.log.Warn().Msg("failed to send message to client, channel is full")
		if c.svc != nil {
			c.svc.stats.Incr(stats.DroppedEvents)
		}
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Warn().Err(err).Msg("write message")
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.svc.UnregisterConnection(c)
	c.stopClient()
}
