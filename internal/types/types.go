package types

import (
	"time"
)

const (
	RoleUser       = "user"
	RoleStoreOwner = "store_owner"
	RoleAdmin      = "admin"
)

const (
	StoreStatusPending  = "pending"
	StoreStatusApproved = "approved"
	StoreStatusRejected = "rejected"
)

const (
	SenderUser  = "user"
	SenderBot   = "bot"
	SenderAdmin = "admin"
)

type User struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	StoreId   string    `json:"storeId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type StoreRef struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Store struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Logo         string    `json:"logo"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	Distance     string    `json:"distance"`
	DeliveryTime string    `json:"deliveryTime"`
	Address      string    `json:"address"`
	IsOpen       bool      `json:"isOpen"`
	Status       string    `json:"status"`
	OwnerId      string    `json:"ownerId,omitempty"`
	Description  string    `json:"description"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Discount      *int      `json:"discount,omitempty"`
	Image         string    `json:"image"`
	Category      string    `json:"category"`
	StoreId       string    `json:"storeId"`
	Store         StoreRef  `json:"store"`
	InStock       bool      `json:"inStock"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	Offer         string    `json:"offer,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ProductRef struct {
	Id    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

type OrderItem struct {
	Id        int        `json:"id"`
	ProductId string     `json:"productId"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
	Product   ProductRef `json:"product"`
}

type Order struct {
	Id                string         `json:"id"`
	UserId            string         `json:"userId"`
	StoreId           string         `json:"storeId"`
	Store             StoreRef       `json:"store"`
	Status            string         `json:"status"`
	Total             float64        `json:"total"`
	DeliveryAddress   string         `json:"deliveryAddress"`
	EstimatedDelivery string         `json:"estimatedDelivery"`
	Items             []OrderItem    `json:"items"`
	TrackingSteps     []TrackingStep `json:"trackingSteps"`
	CreatedAt         time.Time      `json:"createdAt"`
}

type ChatMessage struct {
	Id        string    `json:"id"`
	UserId    string    `json:"userId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"isRead"`
	Timestamp time.Time `json:"timestamp"`
}

type Notification struct {
	Id          string    `json:"id"`
	UserId      *string   `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedId   string    `json:"relatedId,omitempty"`
	RelatedType string    `json:"relatedType,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RecentOrder struct {
	Id       string  `json:"id"`
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

type AdminStats struct {
	TotalProducts int           `json:"totalProducts"`
	ActiveStores  int           `json:"activeStores"`
	TotalUsers    int           `json:"totalUsers"`
	Revenue       float64       `json:"revenue"`
	ActiveDeals   int           `json:"activeDeals"`
	InStock       int           `json:"inStock"`
	OpenStores    int           `json:"openStores"`
	RecentOrders  []RecentOrder `json:"recentOrders"`
}

type DealTimer struct {
	EndTime time.Time `json:"endTime"`
}
