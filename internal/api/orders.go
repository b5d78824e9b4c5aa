package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/types"
)

type OrderProductRequest struct {
	Id      string          `json:"id"`
	Price   float64         `json:"price"`
	StoreId string          `json:"storeId"`
	Store   *types.StoreRef `json:"store"`
}

// OrderItemRequest accepts either flat fields or the cart's nested
// product object.
type OrderItemRequest struct {
	ProductId string               `json:"productId"`
	Quantity  int                  `json:"quantity"`
	Price     *float64             `json:"price"`
	Product   *OrderProductRequest `json:"product"`
}

func (it OrderItemRequest) productId() string {
	if it.ProductId == "" && it.Product != nil {
		return it.Product.Id
	}
	return it.ProductId
}

func (it OrderItemRequest) price() float64 {
	if it.Price != nil {
		return *it.Price
	}
	if it.Product != nil {
		return it.Product.Price
	}
	return 0
}

func (it OrderItemRequest) storeId() string {
	if it.Product == nil {
		return ""
	}
	if it.Product.Store != nil && it.Product.Store.Id != "" {
		return it.Product.Store.Id
	}
	return it.Product.StoreId
}

type CreateOrderRequest struct {
	UserId          string             `json:"userId"`
	StoreId         string             `json:"storeId"`
	Items           []OrderItemRequest `json:"items"`
	Total           float64            `json:"total"`
	DeliveryAddress string             `json:"deliveryAddress"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (req CreateOrderRequest) params() (database.CreateOrderParams, error) {
	if len(req.Items) == 0 {
		return database.CreateOrderParams{}, errors.New("order must contain at least one item")
	}

	params := database.CreateOrderParams{
		UserId:          req.UserId,
		StoreId:         req.StoreId,
		Total:           req.Total,
		DeliveryAddress: req.DeliveryAddress,
		Items:           make([]database.CreateOrderItemParams, 0, len(req.Items)),
	}
	if params.StoreId == "" {
		params.StoreId = req.Items[0].storeId()
	}
	if params.StoreId == "" {
		return database.CreateOrderParams{}, errors.New("store id is required")
	}

	var sum float64
	for i, it := range req.Items {
		item := database.CreateOrderItemParams{
			ProductId: it.productId(),
			Quantity:  it.Quantity,
			Price:     it.price(),
		}
		switch {
		case item.ProductId == "":
			return database.CreateOrderParams{}, fmt.Errorf("item %d: product id is required", i)
		case item.Quantity <= 0:
			return database.CreateOrderParams{}, fmt.Errorf("item %d: quantity must be positive", i)
		case item.Price < 0:
			return database.CreateOrderParams{}, fmt.Errorf("item %d: price cannot be negative", i)
		}
		sum += item.Price * float64(item.Quantity)
		params.Items = append(params.Items, item)
	}

	if params.Total < 0 {
		return database.CreateOrderParams{}, errors.New("total cannot be negative")
	}
	if params.Total == 0 {
		params.Total = sum
	}

	return params, nil
}

// canViewOrder reports whether the caller placed the order, owns the
// store that received it or is an administrator.
func (s *App) canViewOrder(r *http.Request, session Session, order database.Order) (bool, error) {
	if session.IsAdmin() || order.UserId == session.UserId {
		return true, nil
	}

	store, err := s.db.GetStore(r.Context(), order.StoreId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	return canManageStore(session, store), nil
}

func (s *App) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	session, _ := SessionFrom(r.Context())
	if req.UserId == "" || !session.IsAdmin() {
		req.UserId = session.UserId
	}

	params, err := req.params()
	if err != nil {
		errResp := NewBadRequestError().WithMessage(err.Error())
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	order, err := s.db.CreateOrder(r.Context(), params)
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}
	s.incr(stats.OrdersCreated)

	store, err := s.db.GetStore(r.Context(), order.StoreId)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", order.Id).Msg("failed to load store for order notification")
	} else {
		if order.StoreName == "" {
			order.StoreName = store.Name
		}
		s.notifyUser(r, store.OwnerId, notifyOrder, "New order",
			fmt.Sprintf("Order %s was placed at %s.", order.Id, store.Name), order.Id, notifyOrder)
	}

	s.writeJson(w, http.StatusCreated, toOrder(order))
}

func (s *App) listOrders(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	q := r.URL.Query()
	filter := database.OrderFilter{
		UserId:  q.Get("userId"),
		StoreId: q.Get("storeId"),
	}

	if !session.IsAdmin() {
		switch {
		case filter.UserId != "" && filter.UserId != session.UserId:
			s.writeError(w, r, NewForbiddenError())
			return
		case filter.UserId == "" && filter.StoreId != "":
			store, err := s.db.GetStore(r.Context(), filter.StoreId)
			if err != nil {
				s.writeError(w, r, dbError(err))
				return
			}
			if !canManageStore(session, store) {
				s.writeError(w, r, NewForbiddenError())
				return
			}
		default:
			filter.UserId = session.UserId
		}
	}

	dbOrders, err := s.db.ListOrders(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	orders := make([]types.Order, 0, len(dbOrders))
	for _, o := range dbOrders {
		orders = append(orders, toOrder(o))
	}

	s.writeJson(w, http.StatusOK, orders)
}

func (s *App) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.db.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	session, _ := SessionFrom(r.Context())
	ok, err := s.canViewOrder(r, session, order)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}
	if !ok {
		s.writeError(w, r, NewForbiddenError())
		return
	}

	s.writeJson(w, http.StatusOK, toOrder(order))
}

func (s *App) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !types.ValidOrderStatus(req.Status) {
		errResp := NewBadRequestError().WithMessage("invalid order status")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	before, err := s.db.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	session, _ := SessionFrom(r.Context())
	store, err := s.db.GetStore(r.Context(), before.StoreId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}
	if !canManageStore(session, store) {
		s.writeError(w, r, NewForbiddenError())
		return
	}

	order, err := s.db.UpdateOrderStatus(r.Context(), before.Id, req.Status)
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	if order.Status != before.Status {
		s.notifyUser(r, order.UserId, notifyOrder, "Order update",
			fmt.Sprintf("Your order %s is now %s.", order.Id, strings.ReplaceAll(order.Status, "_", " ")),
			order.Id, notifyOrder)
	}

	s.writeJson(w, http.StatusOK, toOrder(order))
}
