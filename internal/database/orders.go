package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/teris-io/shortid"
)

const (
	orderSelect = "SELECT o.id, o.user_id, o.store_id, COALESCE(s.name, ''), o.status, o.total, " +
		"COALESCE(o.delivery_address, ''), COALESCE(o.estimated_delivery, ''), o.created_at " +
		"FROM orders o LEFT JOIN stores s ON s.id = o.store_id"

	orderItemsQuery = "SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), COALESCE(p.image, ''), " +
		"oi.quantity, oi.price FROM order_items oi LEFT JOIN products p ON p.id = oi.product_id " +
		"WHERE oi.order_id = ANY($1) ORDER BY oi.id"

	insertOrderQuery = "INSERT INTO orders (id, user_id, store_id, status, total, delivery_address, " +
		"estimated_delivery, created_at) VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7)"

	insertOrderItemQuery = "INSERT INTO order_items (order_id, product_id, quantity, price) " +
		"VALUES ($1, $2, $3, $4) RETURNING id"

	estimatedDelivery = "15-30 min"
)

func newOrderId() (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", err
	}

	return "ORD-" + id, nil
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.Id,
		&o.UserId,
		&o.StoreId,
		&o.StoreName,
		&o.Status,
		&o.Total,
		&o.DeliveryAddress,
		&o.EstimatedDelivery,
		&o.CreatedAt,
	)

	return o, classify(err)
}

// CreateOrder writes the order header and all of its line items in one
// transaction. Either every row is committed or none is.
func (db *PgRepository) CreateOrder(ctx context.Context, params CreateOrderParams) (order Order, err error) {
	orderId, err := newOrderId()
	if err != nil {
		return Order{}, fmt.Errorf("generate order id: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	createdAt := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, insertOrderQuery,
		orderId,
		params.UserId,
		params.StoreId,
		params.Total,
		nullString(params.DeliveryAddress),
		estimatedDelivery,
		createdAt,
	); err != nil {
		err = classify(err)
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	order = Order{
		Id:                orderId,
		UserId:            params.UserId,
		StoreId:           params.StoreId,
		Status:            "pending",
		Total:             params.Total,
		DeliveryAddress:   params.DeliveryAddress,
		EstimatedDelivery: estimatedDelivery,
		CreatedAt:         createdAt,
	}

	for _, item := range params.Items {
		oi := OrderItem{
			OrderId:   orderId,
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}

		if err = tx.QueryRowContext(ctx, insertOrderItemQuery,
			orderId,
			item.ProductId,
			item.Quantity,
			item.Price,
		).Scan(&oi.Id); err != nil {
			err = classify(err)
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}

		order.Items = append(order.Items, oi)
	}

	if err = tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit transaction: %w", err)
	}

	return order, nil
}

func (db *PgRepository) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(db.conn.QueryRowContext(ctx, orderSelect+" WHERE o.id = $1", id))
	if err != nil {
		return Order{}, err
	}

	orders := []Order{o}
	if err := db.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}

	return orders[0], nil
}

func (db *PgRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	var where whereBuilder
	if filter.UserId != "" {
		where.add("o.user_id = $%d", filter.UserId)
	}
	if filter.StoreId != "" {
		where.add("o.store_id = $%d", filter.StoreId)
	}

	rows, err := db.conn.QueryContext(ctx,
		orderSelect+where.String()+" ORDER BY o.created_at DESC",
		where.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads the line items for all given orders with a single query.
func (db *PgRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.Id
		index[o.Id] = i
		orders[i].Items = []OrderItem{}
	}

	rows, err := db.conn.QueryContext(ctx, orderItemsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(
			&oi.Id,
			&oi.OrderId,
			&oi.ProductId,
			&oi.ProductName,
			&oi.ProductImage,
			&oi.Quantity,
			&oi.Price,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}

		i := index[oi.OrderId]
		orders[i].Items = append(orders[i].Items, oi)
	}

	return rows.Err()
}

func (db *PgRepository) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	res, err := db.conn.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return Order{}, classify(err)
	}
	if err := expectAffected(res); err != nil {
		return Order{}, err
	}

	return db.GetOrder(ctx, id)
}
