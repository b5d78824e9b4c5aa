package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const productSelect = "SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.original_price, p.discount, " +
	"COALESCE(p.image, ''), COALESCE(p.category, ''), p.store_id, COALESCE(s.name, ''), p.in_stock, " +
	"p.rating, p.review_count, COALESCE(p.offer, ''), p.latitude, p.longitude, p.created_at " +
	"FROM products p LEFT JOIN stores s ON s.id = p.store_id"

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.Id,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.Discount,
		&p.Image,
		&p.Category,
		&p.StoreId,
		&p.StoreName,
		&p.InStock,
		&p.Rating,
		&p.ReviewCount,
		&p.Offer,
		&p.Latitude,
		&p.Longitude,
		&p.CreatedAt,
	)

	return p, classify(err)
}

func (db *PgRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var where whereBuilder
	if filter.StoreId != "" {
		where.add("p.store_id = $%d", filter.StoreId)
	}
	if filter.Category != "" {
		where.add("p.category = $%d", filter.Category)
	}
	if filter.Search != "" {
		where.add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	rows, err := db.conn.QueryContext(ctx,
		productSelect+where.String()+" ORDER BY p.created_at DESC",
		where.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (db *PgRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	row := db.conn.QueryRowContext(ctx, productSelect+" WHERE p.id = $1", id)
	return scanProduct(row)
}

func (db *PgRepository) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO products (id, name, description, price, original_price, discount, image, category, "+
			"store_id, in_stock, offer, latitude, longitude, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $11, $12, $13)",
		id,
		params.Name,
		nullString(params.Description),
		params.Price,
		params.OriginalPrice,
		params.Discount,
		nullString(params.Image),
		nullString(params.Category),
		params.StoreId,
		nullString(params.Offer),
		params.Latitude,
		params.Longitude,
		time.Now().UTC(),
	)
	if err != nil {
		return Product{}, classify(err)
	}

	return db.GetProduct(ctx, id)
}

func (db *PgRepository) UpdateProduct(ctx context.Context, id string, update ProductUpdate) (Product, error) {
	var b updateBuilder
	if update.Name != nil {
		b.set("name", *update.Name)
	}
	if update.Description != nil {
		b.set("description", *update.Description)
	}
	if update.Price != nil {
		b.set("price", *update.Price)
	}
	if update.OriginalPrice != nil {
		b.set("original_price", *update.OriginalPrice)
	}
	if update.Discount != nil {
		b.set("discount", *update.Discount)
	}
	if update.Image != nil {
		b.set("image", *update.Image)
	}
	if update.Category != nil {
		b.set("category", *update.Category)
	}
	if update.InStock != nil {
		b.set("in_stock", *update.InStock)
	}
	if update.Offer != nil {
		b.set("offer", *update.Offer)
	}

	if !b.empty() {
		query, args := b.build("products", id)
		res, err := db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return Product{}, classify(err)
		}
		if err := expectAffected(res); err != nil {
			return Product{}, err
		}
	}

	return db.GetProduct(ctx, id)
}

func (db *PgRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}

	return expectAffected(res)
}
