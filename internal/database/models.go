package database

import "time"

type User struct {
	Id           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Avatar       string
	Phone        string
	StoreId      string
	CreatedAt    time.Time
}

type Store struct {
	Id           string
	Name         string
	Logo         string
	Rating       float64
	ReviewCount  int
	Distance     string
	DeliveryTime string
	Address      string
	IsOpen       bool
	Status       string
	OwnerId      string
	Description  string
	Phone        string
	Email        string
	Latitude     *float64
	Longitude    *float64
	CreatedAt    time.Time
}

type Product struct {
	Id            string
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Discount      *int
	Image         string
	Category      string
	StoreId       string
	StoreName     string
	InStock       bool
	Rating        float64
	ReviewCount   int
	Offer         string
	Latitude      *float64
	Longitude     *float64
	CreatedAt     time.Time
}

type Order struct {
	Id                string
	UserId            string
	StoreId           string
	StoreName         string
	Status            string
	Total             float64
	DeliveryAddress   string
	EstimatedDelivery string
	Items             []OrderItem
	CreatedAt         time.Time
}

type OrderItem struct {
	Id           int
	OrderId      string
	ProductId    string
	ProductName  string
	ProductImage string
	Quantity     int
	Price        float64
}

type Message struct {
	Id        string
	UserId    string
	Sender    string
	Text      string
	IsRead    bool
	CreatedAt time.Time
}

type Notification struct {
	Id          string
	UserId      *string
	Title       string
	Message     string
	Type        string
	RelatedId   string
	RelatedType string
	IsRead      bool
	CreatedAt   time.Time
}

type RecentOrder struct {
	Id       string
	Customer string
	Amount   float64
	Status   string
}

type AdminStats struct {
	TotalProducts int
	ActiveStores  int
	TotalUsers    int
	Revenue       float64
	ActiveDeals   int
	InStock       int
	OpenStores    int
	RecentOrders  []RecentOrder
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type StoreFilter struct {
	Status  string
	OwnerId string
}

type CreateStoreParams struct {
	Name         string
	Logo         string
	DeliveryTime string
	Distance     string
	Address      string
	OwnerId      string
	Description  string
	Phone        string
	Email        string
	Latitude     *float64
	Longitude    *float64
}

// StoreUpdate carries the mutable store columns. Nil fields are left
// untouched.
type StoreUpdate struct {
	Name         *string
	Logo         *string
	DeliveryTime *string
	Distance     *string
	Address      *string
	IsOpen       *bool
	Status       *string
	Description  *string
	Phone        *string
	Email        *string
	Latitude     *float64
	Longitude    *float64
}

type ProductFilter struct {
	StoreId  string
	Category string
	Search   string
}

type CreateProductParams struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Discount      *int
	Image         string
	Category      string
	StoreId       string
	Offer         string
	Latitude      *float64
	Longitude     *float64
}

type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Discount      *int
	Image         *string
	Category      *string
	InStock       *bool
	Offer         *string
}

type OrderFilter struct {
	UserId  string
	StoreId string
}

type CreateOrderItemParams struct {
	ProductId string
	Quantity  int
	Price     float64
}

type CreateOrderParams struct {
	UserId          string
	StoreId         string
	Total           float64
	DeliveryAddress string
	Items           []CreateOrderItemParams
}

type NotificationFilter struct {
	// All returns every notification regardless of recipient.
	All    bool
	UserId string
	Limit  int
}
