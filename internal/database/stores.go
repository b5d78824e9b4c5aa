package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const storeColumns = "id, name, COALESCE(logo, ''), rating, review_count, COALESCE(distance, ''), " +
	"COALESCE(delivery_time, ''), COALESCE(address, ''), is_open, status, COALESCE(owner_id, ''), " +
	"COALESCE(description, ''), COALESCE(phone, ''), COALESCE(email, ''), latitude, longitude, created_at"

func scanStore(row rowScanner) (Store, error) {
	var s Store
	err := row.Scan(
		&s.Id,
		&s.Name,
		&s.Logo,
		&s.Rating,
		&s.ReviewCount,
		&s.Distance,
		&s.DeliveryTime,
		&s.Address,
		&s.IsOpen,
		&s.Status,
		&s.OwnerId,
		&s.Description,
		&s.Phone,
		&s.Email,
		&s.Latitude,
		&s.Longitude,
		&s.CreatedAt,
	)

	return s, classify(err)
}

func (db *PgRepository) ListStores(ctx context.Context, filter StoreFilter) ([]Store, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = $%d", filter.Status)
	}
	if filter.OwnerId != "" {
		where.add("owner_id = $%d", filter.OwnerId)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+storeColumns+" FROM stores"+where.String()+" ORDER BY created_at DESC",
		where.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := []Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}

	return stores, rows.Err()
}

func (db *PgRepository) GetStore(ctx context.Context, id string) (Store, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+storeColumns+" FROM stores WHERE id = $1",
		id,
	)

	return scanStore(row)
}

// CreateStore inserts a store in the pending state. Stores only become
// visible to shoppers after an admin approves them.
func (db *PgRepository) CreateStore(ctx context.Context, params CreateStoreParams) (Store, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO stores (id, name, logo, delivery_time, distance, address, status, owner_id, "+
			"description, phone, email, latitude, longitude, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, $10, $11, $12, $13) "+
			"RETURNING "+storeColumns,
		uuid.NewString(),
		params.Name,
		nullString(params.Logo),
		nullString(params.DeliveryTime),
		nullString(params.Distance),
		nullString(params.Address),
		nullString(params.OwnerId),
		nullString(params.Description),
		nullString(params.Phone),
		nullString(params.Email),
		params.Latitude,
		params.Longitude,
		time.Now().UTC(),
	)

	return scanStore(row)
}

func (db *PgRepository) UpdateStore(ctx context.Context, id string, update StoreUpdate) (Store, error) {
	var b updateBuilder
	if update.Name != nil {
		b.set("name", *update.Name)
	}
	if update.Logo != nil {
		b.set("logo", *update.Logo)
	}
	if update.DeliveryTime != nil {
		b.set("delivery_time", *update.DeliveryTime)
	}
	if update.Distance != nil {
		b.set("distance", *update.Distance)
	}
	if update.Address != nil {
		b.set("address", *update.Address)
	}
	if update.IsOpen != nil {
		b.set("is_open", *update.IsOpen)
	}
	if update.Status != nil {
		b.set("status", *update.Status)
	}
	if update.Description != nil {
		b.set("description", *update.Description)
	}
	if update.Phone != nil {
		b.set("phone", *update.Phone)
	}
	if update.Email != nil {
		b.set("email", *update.Email)
	}
	if update.Latitude != nil {
		b.set("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		b.set("longitude", *update.Longitude)
	}

	if b.empty() {
		return db.GetStore(ctx, id)
	}

	query, args := b.build("stores", id)
	row := db.conn.QueryRowContext(ctx, query+" RETURNING "+storeColumns, args...)

	return scanStore(row)
}

func (db *PgRepository) DeleteStore(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM stores WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}

	return expectAffected(res)
}
