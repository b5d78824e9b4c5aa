package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserById(ctx context.Context, id string) (User, error) {
	args := m.Called(id)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) ListStores(ctx context.Context, filter StoreFilter) ([]Store, error) {
	args := m.Called(filter)
	return args.Get(0).([]Store), args.Error(1)
}
func (m *MockRepository) GetStore(ctx context.Context, id string) (Store, error) {
	args := m.Called(id)
	return args.Get(0).(Store), args.Error(1)
}
func (m *MockRepository) CreateStore(ctx context.Context, params CreateStoreParams) (Store, error) {
	args := m.Called(params)
	return args.Get(0).(Store), args.Error(1)
}
func (m *MockRepository) UpdateStore(ctx context.Context, id string, update StoreUpdate) (Store, error) {
	args := m.Called(id, update)
	return args.Get(0).(Store), args.Error(1)
}
func (m *MockRepository) DeleteStore(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	args := m.Called(filter)
	return args.Get(0).([]Product), args.Error(1)
}
func (m *MockRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	args := m.Called(id)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockRepository) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	args := m.Called(params)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockRepository) UpdateProduct(ctx context.Context, id string, update ProductUpdate) (Product, error) {
	args := m.Called(id, update)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockRepository) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error) {
	args := m.Called(params)
	return args.Get(0).(Order), args.Error(1)
}
func (m *MockRepository) GetOrder(ctx context.Context, id string) (Order, error) {
	args := m.Called(id)
	return args.Get(0).(Order), args.Error(1)
}
func (m *MockRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	args := m.Called(filter)
	return args.Get(0).([]Order), args.Error(1)
}
func (m *MockRepository) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	args := m.Called(id, status)
	return args.Get(0).(Order), args.Error(1)
}
func (m *MockRepository) CreateMessage(ctx context.Context, msg Message) error {
	args := m.Called(msg)
	return args.Error(0)
}
func (m *MockRepository) ListMessages(ctx context.Context, userId string) ([]Message, error) {
	args := m.Called(userId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) MarkMessagesRead(ctx context.Context, userId string) error {
	args := m.Called(userId)
	return args.Error(0)
}
func (m *MockRepository) CreateNotification(ctx context.Context, n Notification) error {
	args := m.Called(n)
	return args.Error(0)
}
func (m *MockRepository) ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error) {
	args := m.Called(filter)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockRepository) MarkNotificationRead(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) GetSetting(ctx context.Context, section string) (string, error) {
	args := m.Called(section)
	return args.String(0), args.Error(1)
}
func (m *MockRepository) PutSetting(ctx context.Context, section, value string) error {
	args := m.Called(section, value)
	return args.Error(0)
}
func (m *MockRepository) GetAdminStats(ctx context.Context) (AdminStats, error) {
	args := m.Called()
	return args.Get(0).(AdminStats), args.Error(1)
}
