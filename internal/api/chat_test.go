package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestGetChatHistory(t *testing.T) {
	history := []database.Message{
		{Id: "m1", UserId: customer.Id, Sender: types.SenderUser, Text: "hello", CreatedAt: time.Now().UTC()},
		{Id: "m2", UserId: customer.Id, Sender: types.SenderBot, Text: "Hi there!", CreatedAt: time.Now().UTC()},
	}

	tcases := []struct {
		name    string
		as      *types.User
		mockErr error
		status  int
	}{
		{name: "own history", as: &customer, status: http.StatusOK},
		{name: "admin reads any history", as: &admin, status: http.StatusOK},
		{name: "other user", as: &owner, status: http.StatusForbidden},
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "database failure", as: &customer, mockErr: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			if tc.status == http.StatusOK || tc.mockErr != nil {
				db.On("ListMessages", customer.Id).Return(history, tc.mockErr).Once()
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodGet, "/api/chat/history/"+customer.Id, nil, tc.as)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status != http.StatusOK {
				return
			}

			messages := decodeBody[[]types.ChatMessage](t, rr)
			if assert.Len(t, messages, 2) {
				assert.Equal(t, "m1", messages[0].Id, "expected chronological order to be kept")
				assert.Equal(t, types.SenderBot, messages[1].Sender)
			}
		})
	}
}

func TestMarkChatRead(t *testing.T) {
	db := &database.MockRepository{}
	db.On("MarkMessagesRead", customer.Id).Return(nil).Once()
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodPost, "/api/chat/history/"+customer.Id+"/read", nil, &customer)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, app, http.MethodPost, "/api/chat/history/"+customer.Id+"/read", nil, &owner)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	db.AssertExpectations(t)
}

func TestListNotifications(t *testing.T) {
	userId := customer.Id
	feed := []database.Notification{
		{Id: "n2", UserId: &userId, Type: notifyOrder, Title: "Order update", CreatedAt: time.Now().UTC()},
		{Id: "n1", Type: notifySystemAdmin, Title: "New store registration", CreatedAt: time.Now().UTC()},
	}

	tcases := []struct {
		name   string
		as     *types.User
		filter database.NotificationFilter
	}{
		{
			name:   "user sees own feed",
			as:     &customer,
			filter: database.NotificationFilter{UserId: customer.Id, Limit: userNotificationLimit},
		},
		{
			name:   "admin sees everything",
			as:     &admin,
			filter: database.NotificationFilter{All: true, Limit: adminNotificationLimit},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			db.On("ListNotifications", tc.filter).Return(feed, nil).Once()
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodGet, "/api/notifications", nil, tc.as)

			assert.Equal(t, http.StatusOK, rr.Code)
			db.AssertExpectations(t)

			got := decodeBody[[]types.Notification](t, rr)
			if assert.Len(t, got, 2) {
				assert.Equal(t, "n2", got[0].Id)
				assert.Nil(t, got[1].UserId, "expected broadcast notification to have no recipient")
			}
		})
	}
}

func TestMarkNotificationRead(t *testing.T) {
	tcases := []struct {
		name    string
		mockErr error
		status  int
	}{
		{name: "marked", status: http.StatusOK},
		{name: "unknown id", mockErr: database.ErrNotFound, status: http.StatusNotFound},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			db.On("MarkNotificationRead", "n1").Return(tc.mockErr).Once()
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPost, "/api/notifications/n1/read", nil, &customer)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
		})
	}
}
