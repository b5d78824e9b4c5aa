package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/realtime"
	"github.com/npezzotti/smartshop/internal/types"
)

const (
	notifySystemAdmin = "system_admin"
	notifyStore       = "store"
	notifyProduct     = "product"
	notifyOrder       = "order"
)

type CreateStoreRequest struct {
	Name         string   `json:"name"`
	Logo         string   `json:"logo"`
	DeliveryTime string   `json:"deliveryTime"`
	Distance     string   `json:"distance"`
	Address      string   `json:"address"`
	OwnerId      string   `json:"ownerId"`
	Description  string   `json:"description"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type UpdateStoreRequest struct {
	Name         *string  `json:"name"`
	Logo         *string  `json:"logo"`
	DeliveryTime *string  `json:"deliveryTime"`
	Distance     *string  `json:"distance"`
	Address      *string  `json:"address"`
	IsOpen       *bool    `json:"isOpen"`
	Status       *string  `json:"status"`
	Description  *string  `json:"description"`
	Phone        *string  `json:"phone"`
	Email        *string  `json:"email"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func validStoreStatus(status string) bool {
	switch status {
	case types.StoreStatusPending, types.StoreStatusApproved, types.StoreStatusRejected:
		return true
	}
	return false
}

func canManageStore(session Session, store database.Store) bool {
	return session.IsAdmin() || (store.OwnerId != "" && store.OwnerId == session.UserId)
}

// loadManagedStore fetches the store and checks that the caller may
// change it. It writes the error response itself and reports false on
// failure.
func (s *App) loadManagedStore(w http.ResponseWriter, r *http.Request, id string) (database.Store, bool) {
	store, err := s.db.GetStore(r.Context(), id)
	if err != nil {
		s.writeError(w, r, dbError(err))
		return database.Store{}, false
	}

	session, _ := SessionFrom(r.Context())
	if !canManageStore(session, store) {
		s.writeError(w, r, NewForbiddenError())
		return database.Store{}, false
	}

	return store, true
}

// notify detaches from the request's cancellation so a client that
// disconnects mid-request cannot abort the notification write.
func (s *App) notify(r *http.Request, p realtime.NotifyParams) {
	s.rt.Notify(context.WithoutCancel(r.Context()), p)
}

func (s *App) notifyUser(r *http.Request, userId, kind, title, message, relatedId, relatedType string) {
	if userId == "" {
		return
	}

	s.notify(r, realtime.NotifyParams{
		UserId:      &userId,
		Type:        kind,
		Title:       title,
		Message:     message,
		RelatedId:   relatedId,
		RelatedType: relatedType,
	})
}

func (s *App) listStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbStores, err := s.db.ListStores(r.Context(), database.StoreFilter{
		Status:  q.Get("status"),
		OwnerId: q.Get("ownerId"),
	})
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	stores := make([]types.Store, 0, len(dbStores))
	for _, st := range dbStores {
		stores = append(stores, toStore(st))
	}

	s.writeJson(w, http.StatusOK, stores)
}

func (s *App) getStore(w http.ResponseWriter, r *http.Request) {
	store, err := s.db.GetStore(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toStore(store))
}

func (s *App) createStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError().WithMessage("store name is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	session, _ := SessionFrom(r.Context())
	ownerId := session.UserId
	if session.IsAdmin() && req.OwnerId != "" {
		ownerId = req.OwnerId
	}

	store, err := s.db.CreateStore(r.Context(), database.CreateStoreParams{
		Name:         req.Name,
		Logo:         req.Logo,
		DeliveryTime: req.DeliveryTime,
		Distance:     req.Distance,
		Address:      req.Address,
		OwnerId:      ownerId,
		Description:  req.Description,
		Phone:        req.Phone,
		Email:        req.Email,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.notify(r, realtime.NotifyParams{
		Type:        notifySystemAdmin,
		Title:       "New store registration",
		Message:     fmt.Sprintf("%s is waiting for approval.", store.Name),
		RelatedId:   store.Id,
		RelatedType: notifyStore,
	})

	s.writeJson(w, http.StatusCreated, toStore(store))
}

func (s *App) updateStore(w http.ResponseWriter, r *http.Request) {
	before, ok := s.loadManagedStore(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Status != nil {
		session, _ := SessionFrom(r.Context())
		if !session.IsAdmin() {
			errResp := NewForbiddenError().WithMessage("only administrators can change store status")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		if !validStoreStatus(*req.Status) {
			errResp := NewBadRequestError().WithMessage("invalid store status")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	store, err := s.db.UpdateStore(r.Context(), before.Id, database.StoreUpdate{
		Name:         req.Name,
		Logo:         req.Logo,
		DeliveryTime: req.DeliveryTime,
		Distance:     req.Distance,
		Address:      req.Address,
		IsOpen:       req.IsOpen,
		Status:       req.Status,
		Description:  req.Description,
		Phone:        req.Phone,
		Email:        req.Email,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	if store.Status != before.Status {
		switch store.Status {
		case types.StoreStatusApproved:
			s.notifyUser(r, store.OwnerId, notifyStore, "Store approved",
				fmt.Sprintf("Your store %s has been approved.", store.Name), store.Id, notifyStore)
		case types.StoreStatusRejected:
			s.notifyUser(r, store.OwnerId, notifyStore, "Store rejected",
				fmt.Sprintf("Your store %s has been rejected.", store.Name), store.Id, notifyStore)
		}
	}

	s.writeJson(w, http.StatusOK, toStore(store))
}

func (s *App) deleteStore(w http.ResponseWriter, r *http.Request) {
	store, ok := s.loadManagedStore(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.db.DeleteStore(r.Context(), store.Id); err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.writeJson(w, http.StatusOK, MessageResponse{Message: "store deleted"})
}
