package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
)

const (
	flashSaleSetting = "flash_sale_end"
	flashSaleDefault = 5 * time.Hour
)

type SetDealTimerRequest struct {
	EndTime string `json:"endTime"`
}

func (s *App) getDealTimer(w http.ResponseWriter, r *http.Request) {
	value, err := s.db.GetSetting(r.Context(), flashSaleSetting)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	endTime, perr := time.Parse(time.RFC3339, value)
	if err != nil || perr != nil {
		if value != "" {
			s.log.Warn().Str("value", value).Msg("ignoring malformed flash sale end time")
		}
		endTime = time.Now().UTC().Add(flashSaleDefault).Truncate(time.Second)
	}

	s.writeJson(w, http.StatusOK, types.DealTimer{EndTime: endTime.UTC()})
}

func (s *App) setDealTimer(w http.ResponseWriter, r *http.Request) {
	var req SetDealTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		errResp := NewBadRequestError().WithMessage("endTime must be an RFC 3339 timestamp")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	endTime = endTime.UTC()

	if err := s.db.PutSetting(r.Context(), flashSaleSetting, endTime.Format(time.RFC3339)); err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	s.rt.BroadcastTimer(r.Context(), endTime)

	s.writeJson(w, http.StatusOK, types.DealTimer{EndTime: endTime})
}
