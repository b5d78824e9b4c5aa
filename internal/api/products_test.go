package api

import (
	"net/http"
	"testing"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testProduct() database.Product {
	discount := 20
	original := 5.0
	return database.Product{
		Id:            "prod-1",
		Name:          "Avocados",
		Price:         4.0,
		OriginalPrice: &original,
		Discount:      &discount,
		Category:      "Produce",
		StoreId:       "store-1",
		StoreName:     "Corner Market",
		InStock:       true,
	}
}

func TestListProducts(t *testing.T) {
	db := &database.MockRepository{}
	db.On("ListProducts", database.ProductFilter{StoreId: "store-1", Search: "avo"}).
		Return([]database.Product{testProduct()}, nil).Once()
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodGet, "/api/products?storeId=store-1&search=avo", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	products := decodeBody[[]types.Product](t, rr)
	if assert.Len(t, products, 1) {
		assert.Equal(t, types.StoreRef{Id: "store-1", Name: "Corner Market"}, products[0].Store)
		assert.Equal(t, "20% OFF", products[0].Offer, "expected offer text derived from discount")
	}
	db.AssertExpectations(t)
}

func TestGetProduct_NotFound(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetProduct", "missing").Return(database.Product{}, database.ErrNotFound).Once()
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodGet, "/api/products/missing", nil, nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateProduct(t *testing.T) {
	tcases := []struct {
		name     string
		as       *types.User
		body     any
		storeErr error
		getStore bool
		status   int
	}{
		{
			name:     "owner adds product",
			as:       &owner,
			body:     CreateProductRequest{Name: "Avocados", Price: 4, StoreId: "store-1"},
			getStore: true,
			status:   http.StatusCreated,
		},
		{
			name:     "store given as nested reference",
			as:       &owner,
			body:     CreateProductRequest{Name: "Avocados", Price: 4, Store: &types.StoreRef{Id: "store-1"}},
			getStore: true,
			status:   http.StatusCreated,
		},
		{
			name:     "admin adds product to any store",
			as:       &admin,
			body:     CreateProductRequest{Name: "Avocados", Price: 4, StoreId: "store-1"},
			getStore: true,
			status:   http.StatusCreated,
		},
		{
			name:   "missing name",
			as:     &owner,
			body:   CreateProductRequest{Price: 4, StoreId: "store-1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "zero price",
			as:     &owner,
			body:   CreateProductRequest{Name: "Avocados", StoreId: "store-1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing store",
			as:     &owner,
			body:   CreateProductRequest{Name: "Avocados", Price: 4},
			status: http.StatusBadRequest,
		},
		{
			name:     "unknown store",
			as:       &owner,
			body:     CreateProductRequest{Name: "Avocados", Price: 4, StoreId: "store-1"},
			getStore: true,
			storeErr: database.ErrNotFound,
			status:   http.StatusBadRequest,
		},
		{
			name:     "not the store owner",
			as:       &customer,
			body:     CreateProductRequest{Name: "Avocados", Price: 4, StoreId: "store-1"},
			getStore: true,
			status:   http.StatusForbidden,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			if tc.getStore {
				db.On("GetStore", "store-1").Return(testStore(), tc.storeErr).Once()
			}
			if tc.status == http.StatusCreated {
				db.On("CreateProduct", mock.MatchedBy(func(p database.CreateProductParams) bool {
					return p.Name == "Avocados" && p.Price == 4 && p.StoreId == "store-1"
				})).Return(testProduct(), nil).Once()
				expectNotification(db, owner.Id, notifyProduct)
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPost, "/api/products", tc.body, tc.as)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	price := 3.5
	negative := -1.0
	inStock := false

	tcases := []struct {
		name   string
		as     *types.User
		body   UpdateProductRequest
		status int
	}{
		{
			name:   "owner updates price",
			as:     &owner,
			body:   UpdateProductRequest{Price: &price, InStock: &inStock},
			status: http.StatusOK,
		},
		{
			name:   "negative price",
			as:     &owner,
			body:   UpdateProductRequest{Price: &negative},
			status: http.StatusBadRequest,
		},
		{
			name:   "stranger",
			as:     &customer,
			body:   UpdateProductRequest{Price: &price},
			status: http.StatusForbidden,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			db.On("GetProduct", "prod-1").Return(testProduct(), nil).Once()
			db.On("GetStore", "store-1").Return(testStore(), nil).Once()
			if tc.status == http.StatusOK {
				updated := testProduct()
				updated.Price = price
				updated.InStock = false
				db.On("UpdateProduct", "prod-1", database.ProductUpdate{Price: &price, InStock: &inStock}).
					Return(updated, nil).Once()
				expectNotification(db, owner.Id, notifyProduct)
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPut, "/api/products/prod-1", tc.body, tc.as)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status == http.StatusOK {
				product := decodeBody[types.Product](t, rr)
				assert.Equal(t, price, product.Price)
				assert.False(t, product.InStock)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetProduct", "prod-1").Return(testProduct(), nil).Once()
	db.On("GetStore", "store-1").Return(testStore(), nil).Once()
	db.On("DeleteProduct", "prod-1").Return(nil).Once()
	expectNotification(db, owner.Id, notifyProduct)
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodDelete, "/api/products/prod-1", nil, &owner)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "product deleted", decodeBody[MessageResponse](t, rr).Message)
	db.AssertExpectations(t)
}
