package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetDealTimer(t *testing.T) {
	stored := time.Date(2026, 11, 27, 18, 0, 0, 0, time.UTC)

	tcases := []struct {
		name     string
		value    string
		mockErr  error
		status   int
		fallback bool
	}{
		{name: "stored end time", value: stored.Format(time.RFC3339), status: http.StatusOK},
		{name: "no setting", mockErr: database.ErrNotFound, status: http.StatusOK, fallback: true},
		{name: "malformed setting", value: "tomorrow", status: http.StatusOK, fallback: true},
		{name: "database failure", mockErr: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			db.On("GetSetting", flashSaleSetting).Return(tc.value, tc.mockErr).Once()
			app := newTestApp(t, db, nil)

			before := time.Now()
			rr := do(t, app, http.MethodGet, "/api/deals/timer", nil, nil)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status != http.StatusOK {
				return
			}

			timer := decodeBody[types.DealTimer](t, rr)
			if tc.fallback {
				assert.WithinDuration(t, before.Add(flashSaleDefault), timer.EndTime, 2*time.Second)
			} else {
				assert.True(t, stored.Equal(timer.EndTime))
			}
		})
	}
}

func TestSetDealTimer(t *testing.T) {
	tcases := []struct {
		name   string
		as     *types.User
		body   any
		status int
	}{
		{name: "admin sets end time", as: &admin, body: SetDealTimerRequest{EndTime: "2026-11-27T20:00:00+02:00"}, status: http.StatusOK},
		{name: "invalid time", as: &admin, body: SetDealTimerRequest{EndTime: "next friday"}, status: http.StatusBadRequest},
		{name: "store owner", as: &owner, body: SetDealTimerRequest{EndTime: "2026-11-27T20:00:00Z"}, status: http.StatusForbidden},
		{name: "anonymous", body: SetDealTimerRequest{EndTime: "2026-11-27T20:00:00Z"}, status: http.StatusUnauthorized},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			if tc.status == http.StatusOK {
				db.On("PutSetting", flashSaleSetting, "2026-11-27T18:00:00Z").Return(nil).Once()
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPost, "/api/deals/timer", tc.body, tc.as)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status == http.StatusOK {
				timer := decodeBody[types.DealTimer](t, rr)
				assert.True(t, time.Date(2026, 11, 27, 18, 0, 0, 0, time.UTC).Equal(timer.EndTime))
			} else {
				db.AssertNotCalled(t, "PutSetting", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminStats(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetAdminStats").Return(database.AdminStats{
		TotalProducts: 12,
		ActiveStores:  3,
		TotalUsers:    40,
		Revenue:       1234.5,
		ActiveDeals:   5,
		InStock:       10,
		OpenStores:    2,
		RecentOrders: []database.RecentOrder{
			{Id: "ORD-1", Customer: "Jane", Amount: 20, Status: types.OrderDelivered},
		},
	}, nil).Once()
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodGet, "/api/admin/stats", nil, &admin)

	assert.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[types.AdminStats](t, rr)
	assert.Equal(t, 12, got.TotalProducts)
	assert.Equal(t, 1234.5, got.Revenue)
	if assert.Len(t, got.RecentOrders, 1) {
		assert.Equal(t, "Jane", got.RecentOrders[0].Customer)
	}
	db.AssertExpectations(t)

	rr = do(t, app, http.MethodGet, "/api/admin/stats", nil, &owner)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
