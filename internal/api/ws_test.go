package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/realtime"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
)

func dialApp(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readServerEvent(t *testing.T, conn *websocket.Conn) realtime.ClientEvent {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt realtime.ClientEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return evt
}

func TestServeWs_CheckOrigin(t *testing.T) {
	tcases := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "no origin", ok: true},
		{name: "allowed origin", origin: "http://localhost:5173", ok: true},
		{name: "foreign origin", origin: "http://evil.example", ok: false},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &database.MockRepository{}, nil)
			srv := httptest.NewServer(app.srv.Handler)
			defer srv.Close()

			_, resp, err := dialApp(t, srv, tc.origin)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				if assert.NotNil(t, resp) {
					assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				}
			}
		})
	}
}

func TestServeWs_PushesNotificationsAndTimer(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetOrder", "ORD-abc123").Return(testOrder(types.OrderPending), nil).Once()
	db.On("GetStore", "store-1").Return(testStore(), nil).Once()
	db.On("UpdateOrderStatus", "ORD-abc123", types.OrderPreparing).
		Return(testOrder(types.OrderPreparing), nil).Once()
	expectNotification(db, customer.Id, notifyOrder)
	db.On("PutSetting", flashSaleSetting, "2026-11-27T18:00:00Z").Return(nil).Once()

	app := newTestApp(t, db, nil)
	srv := httptest.NewServer(app.srv.Handler)
	defer srv.Close()

	conn, _, err := dialApp(t, srv, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	join := `{"event":"join_user_room","data":"` + customer.Id + `"}`
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(join)))
	assert.Eventually(t, func() bool { return app.rt.Rooms().Online(customer.Id) }, time.Second, 10*time.Millisecond)

	send := func(method, target string, body any, as types.User) int {
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(method, srv.URL+target, bytes.NewReader(raw))
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, as))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	status := send(http.MethodPut, "/api/orders/ORD-abc123/status", UpdateOrderStatusRequest{Status: types.OrderPreparing}, owner)
	assert.Equal(t, http.StatusOK, status)

	evt := readServerEvent(t, conn)
	assert.Equal(t, realtime.EventNotification, evt.Event)
	var n types.Notification
	assert.NoError(t, json.Unmarshal(evt.Data, &n))
	assert.Equal(t, "ORD-abc123", n.RelatedId)

	status = send(http.MethodPost, "/api/deals/timer", SetDealTimerRequest{EndTime: "2026-11-27T18:00:00Z"}, admin)
	assert.Equal(t, http.StatusOK, status)

	evt = readServerEvent(t, conn)
	assert.Equal(t, realtime.EventTimerUpdate, evt.Event)
	var timer realtime.TimerUpdate
	assert.NoError(t, json.Unmarshal(evt.Data, &timer))
	assert.True(t, time.Date(2026, 11, 27, 18, 0, 0, 0, time.UTC).Equal(timer.EndTime))

	conn.Close()
	assert.Eventually(t, func() bool { return !app.rt.Rooms().Online(customer.Id) }, 2*time.Second, 10*time.Millisecond,
		"expected the server to drop the closed connection")

	db.AssertExpectations(t)
}
