package database

import "context"

type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserById(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	ListStores(ctx context.Context, filter StoreFilter) ([]Store, error)
	GetStore(ctx context.Context, id string) (Store, error)
	CreateStore(ctx context.Context, params CreateStoreParams) (Store, error)
	UpdateStore(ctx context.Context, id string, update StoreUpdate) (Store, error)
	DeleteStore(ctx context.Context, id string) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (Product, error)
	UpdateProduct(ctx context.Context, id string, update ProductUpdate) (Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (Order, error)

	CreateMessage(ctx context.Context, msg Message) error
	ListMessages(ctx context.Context, userId string) ([]Message, error)
	MarkMessagesRead(ctx context.Context, userId string) error

	CreateNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	GetSetting(ctx context.Context, section string) (string, error)
	PutSetting(ctx context.Context, section, value string) error

	GetAdminStats(ctx context.Context) (AdminStats, error)
}
