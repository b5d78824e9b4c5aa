package api

import (
	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
)

func toUser(u database.User) types.User {
	return types.User{
		Id:        u.Id,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Phone:     u.Phone,
		StoreId:   u.StoreId,
		CreatedAt: u.CreatedAt,
	}
}

func toStore(s database.Store) types.Store {
	return types.Store{
		Id:           s.Id,
		Name:         s.Name,
		Logo:         s.Logo,
		Rating:       s.Rating,
		ReviewCount:  s.ReviewCount,
		Distance:     s.Distance,
		DeliveryTime: s.DeliveryTime,
		Address:      s.Address,
		IsOpen:       s.IsOpen,
		Status:       s.Status,
		OwnerId:      s.OwnerId,
		Description:  s.Description,
		Phone:        s.Phone,
		Email:        s.Email,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		CreatedAt:    s.CreatedAt,
	}
}

func toProduct(p database.Product) types.Product {
	return types.Product{
		Id:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      p.Discount,
		Image:         p.Image,
		Category:      p.Category,
		StoreId:       p.StoreId,
		Store:         types.StoreRef{Id: p.StoreId, Name: p.StoreName},
		InStock:       p.InStock,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Offer:         types.OfferText(p.Offer, p.Discount),
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		CreatedAt:     p.CreatedAt,
	}
}

func toOrder(o database.Order) types.Order {
	items := make([]types.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, types.OrderItem{
			Id:        it.Id,
			ProductId: it.ProductId,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Product: types.ProductRef{
				Id:    it.ProductId,
				Name:  it.ProductName,
				Image: it.ProductImage,
				Price: it.Price,
			},
		})
	}

	return types.Order{
		Id:                o.Id,
		UserId:            o.UserId,
		StoreId:           o.StoreId,
		Store:             types.StoreRef{Id: o.StoreId, Name: o.StoreName},
		Status:            o.Status,
		Total:             o.Total,
		DeliveryAddress:   o.DeliveryAddress,
		EstimatedDelivery: o.EstimatedDelivery,
		Items:             items,
		TrackingSteps:     types.TrackingSteps(o.Status, o.CreatedAt),
		CreatedAt:         o.CreatedAt,
	}
}

func toChatMessage(m database.Message) types.ChatMessage {
	return types.ChatMessage{
		Id:        m.Id,
		UserId:    m.UserId,
		Sender:    m.Sender,
		Text:      m.Text,
		IsRead:    m.IsRead,
		Timestamp: m.CreatedAt,
	}
}

func toNotification(n database.Notification) types.Notification {
	return types.Notification{
		Id:          n.Id,
		UserId:      n.UserId,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		RelatedId:   n.RelatedId,
		RelatedType: n.RelatedType,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func toAdminStats(s database.AdminStats) types.AdminStats {
	recent := make([]types.RecentOrder, 0, len(s.RecentOrders))
	for _, o := range s.RecentOrders {
		recent = append(recent, types.RecentOrder{
			Id:       o.Id,
			Customer: o.Customer,
			Amount:   o.Amount,
			Status:   o.Status,
		})
	}

	return types.AdminStats{
		TotalProducts: s.TotalProducts,
		ActiveStores:  s.ActiveStores,
		TotalUsers:    s.TotalUsers,
		Revenue:       s.Revenue,
		ActiveDeals:   s.ActiveDeals,
		InStock:       s.InStock,
		OpenStores:    s.OpenStores,
		RecentOrders:  recent,
	}
}
