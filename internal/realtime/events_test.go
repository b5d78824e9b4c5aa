package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestUserId_UnmarshalJSON(t *testing.T) {
	tcases := []struct {
		name     string
		raw      string
		expected UserId
		err      bool
	}{
		{name: "string", raw: `"u-42"`, expected: "u-42"},
		{name: "integer", raw: `42`, expected: "42"},
		{name: "null", raw: `null`, expected: ""},
		{name: "boolean", raw: `true`, err: true},
		{name: "object", raw: `{"id":1}`, err: true},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			var id UserId
			err := json.Unmarshal([]byte(tc.raw), &id)
			if tc.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestSendMessage_Unmarshal(t *testing.T) {
	var msg SendMessage
	err := json.Unmarshal([]byte(`{"userId":7,"text":"hi","sender":"user"}`), &msg)
	assert.NoError(t, err)
	assert.Equal(t, SendMessage{UserId: "7", Text: "hi", Sender: "user"}, msg)
}

func Test_newMessageFrame(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	frame, err := newMessageFrame(types.ChatMessage{
		Id:        "m1",
		UserId:    "u1",
		Sender:    types.SenderBot,
		Text:      "hi",
		Timestamp: ts,
	})
	assert.NoError(t, err)
	assert.JSONEq(t,
		`{"event":"new_message","data":{"id":"m1","userId":"u1","sender":"bot","text":"hi","isRead":false,"timestamp":"2024-01-02T03:04:05Z"}}`,
		string(frame),
	)
}

func Test_errorFrame(t *testing.T) {
	assert.JSONEq(t, `{"event":"error","data":{"message":"boom"}}`, string(errorFrame("boom")))
}

func TestNow(t *testing.T) {
	now := Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Millisecond), "expected millisecond precision")
}
