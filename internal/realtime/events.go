package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/npezzotti/smartshop/internal/types"
)

const (
	EventJoinUserRoom = "join_user_room"
	EventSendMessage  = "send_message"
	EventNewMessage   = "new_message"
	EventNotification = "notification"
	EventTimerUpdate  = "timer_update"
	EventError        = "error"
)

// ClientEvent is a frame received from a websocket client.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerEvent is a frame pushed to websocket clients.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// UserId accepts both JSON strings and numbers, since browsers send
// whichever form the id had in local storage.
type UserId string

func (u *UserId) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*u = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserId(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("invalid numeric user id: %w", err)
	}
	*u = UserId(n.String())

	return nil
}

type SendMessage struct {
	UserId UserId `json:"userId"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type TimerUpdate struct {
	EndTime time.Time `json:"endTime"`
}

func encodeEvent(event string, data any) ([]byte, error) {
	return json.Marshal(&ServerEvent{Event: event, Data: data})
}

func newMessageFrame(msg types.ChatMessage) ([]byte, error) {
	return encodeEvent(EventNewMessage, msg)
}

func notificationFrame(n types.Notification) ([]byte, error) {
	return encodeEvent(EventNotification, n)
}

func errorFrame(message string) []byte {
	// ErrorPayload always marshals.
	b, _ := encodeEvent(EventError, ErrorPayload{Message: message})
	return b
}

// Now returns the current time in UTC rounded to milliseconds, matching
// the precision stored by the database.
func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
