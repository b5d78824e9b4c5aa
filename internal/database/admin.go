package database

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const recentOrdersQuery = "SELECT o.id, COALESCE(u.name, ''), o.total, o.status FROM orders o " +
	"LEFT JOIN users u ON u.id = o.user_id ORDER BY o.created_at DESC LIMIT 5"

// GetAdminStats runs the dashboard aggregates concurrently. The first
// failing query cancels the rest.
func (db *PgRepository) GetAdminStats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	g, gCtx := errgroup.WithContext(ctx)

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM products", &stats.TotalProducts},
		{"SELECT COUNT(*) FROM stores", &stats.ActiveStores},
		{"SELECT COUNT(*) FROM users", &stats.TotalUsers},
		{"SELECT COUNT(*) FROM products WHERE discount IS NOT NULL", &stats.ActiveDeals},
		{"SELECT COUNT(*) FROM products WHERE in_stock", &stats.InStock},
		{"SELECT COUNT(*) FROM stores WHERE status = 'approved'", &stats.OpenStores},
	}

	for _, c := range counts {
		g.Go(func() error {
			if err := db.conn.QueryRowContext(gCtx, c.query).Scan(c.dest); err != nil {
				return fmt.Errorf("%s: %w", c.query, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := db.conn.QueryRowContext(gCtx, "SELECT COALESCE(SUM(total), 0) FROM orders").Scan(&stats.Revenue)
		if err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := db.conn.QueryContext(gCtx, recentOrdersQuery)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		defer rows.Close()

		recent := []RecentOrder{}
		for rows.Next() {
			var ro RecentOrder
			if err := rows.Scan(&ro.Id, &ro.Customer, &ro.Amount, &ro.Status); err != nil {
				return fmt.Errorf("scan recent order: %w", err)
			}
			recent = append(recent, ro)
		}
		stats.RecentOrders = recent

		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}

	return stats, nil
}
