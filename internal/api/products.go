package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
)

type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	OriginalPrice *float64        `json:"originalPrice"`
	Discount      *int            `json:"discount"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	StoreId       string          `json:"storeId"`
	Store         *types.StoreRef `json:"store"`
	Offer         string          `json:"offer"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
}

func (req CreateProductRequest) storeId() string {
	if req.Store != nil && req.Store.Id != "" {
		return req.Store.Id
	}
	return req.StoreId
}

type UpdateProductRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"originalPrice"`
	Discount      *int     `json:"discount"`
	Image         *string  `json:"image"`
	Category      *string  `json:"category"`
	InStock       *bool    `json:"inStock"`
	Offer         *string  `json:"offer"`
}

// loadManagedProduct fetches the product and its store and checks that
// the caller may change them.
func (s *App) loadManagedProduct(w http.ResponseWriter, r *http.Request, id string) (database.Product, database.Store, bool) {
	product, err := s.db.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, dbError(err))
		return database.Product{}, database.Store{}, false
	}

	store, err := s.db.GetStore(r.Context(), product.StoreId)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.writeError(w, r, NewInternalServerError(err))
		return database.Product{}, database.Store{}, false
	}

	session, _ := SessionFrom(r.Context())
	if !canManageStore(session, store) {
		s.writeError(w, r, NewForbiddenError())
		return database.Product{}, database.Store{}, false
	}

	return product, store, true
}

func (s *App) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbProducts, err := s.db.ListProducts(r.Context(), database.ProductFilter{
		StoreId:  q.Get("storeId"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	products := make([]types.Product, 0, len(dbProducts))
	for _, p := range dbProducts {
		products = append(products, toProduct(p))
	}

	s.writeJson(w, http.StatusOK, products)
}

func (s *App) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.db.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toProduct(product))
}

func (s *App) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	storeId := req.storeId()
	switch {
	case req.Name == "":
		errResp := NewBadRequestError().WithMessage("product name is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	case req.Price <= 0:
		errResp := NewBadRequestError().WithMessage("price must be greater than zero")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	case storeId == "":
		errResp := NewBadRequestError().WithMessage("store id is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	store, err := s.db.GetStore(r.Context(), storeId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			errResp := NewBadRequestError().WithMessage("unknown store")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	session, _ := SessionFrom(r.Context())
	if !canManageStore(session, store) {
		s.writeError(w, r, NewForbiddenError())
		return
	}

	product, err := s.db.CreateProduct(r.Context(), database.CreateProductParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Image:         req.Image,
		Category:      req.Category,
		StoreId:       store.Id,
		Offer:         req.Offer,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	})
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}
	if product.StoreName == "" {
		product.StoreName = store.Name
	}

	s.notifyUser(r, store.OwnerId, notifyProduct, "Product added",
		fmt.Sprintf("%s is now listed in %s.", product.Name, store.Name), product.Id, notifyProduct)

	s.writeJson(w, http.StatusCreated, toProduct(product))
}

func (s *App) updateProduct(w http.ResponseWriter, r *http.Request) {
	before, store, ok := s.loadManagedProduct(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Price != nil && *req.Price <= 0 {
		errResp := NewBadRequestError().WithMessage("price must be greater than zero")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if req.Name != nil && *req.Name == "" {
		errResp := NewBadRequestError().WithMessage("product name is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	product, err := s.db.UpdateProduct(r.Context(), before.Id, database.ProductUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Image:         req.Image,
		Category:      req.Category,
		InStock:       req.InStock,
		Offer:         req.Offer,
	})
	if err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.notifyUser(r, store.OwnerId, notifyProduct, "Product updated",
		fmt.Sprintf("%s was updated.", product.Name), product.Id, notifyProduct)

	s.writeJson(w, http.StatusOK, toProduct(product))
}

func (s *App) deleteProduct(w http.ResponseWriter, r *http.Request) {
	product, store, ok := s.loadManagedProduct(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.db.DeleteProduct(r.Context(), product.Id); err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.notifyUser(r, store.OwnerId, notifyProduct, "Product removed",
		fmt.Sprintf("%s was removed from %s.", product.Name, store.Name), product.Id, notifyProduct)

	s.writeJson(w, http.StatusOK, MessageResponse{Message: "product deleted"})
}
