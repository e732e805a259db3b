package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

type orderTxRepository struct {
	t *storeTx
}

func (r *orderTxRepository) Create(order domain.Order) error {
	_, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO orders (
			id, shipping_address1, shipping_address2, city, zip, country, phone,
			status, total_price, user_id, date_ordered
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		order.ID, order.ShippingAddress1, order.ShippingAddress2, order.City,
		order.Zip, order.Country, order.Phone, string(order.Status),
		order.TotalPrice, order.UserID, order.DateOrdered,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		if _, err := r.t.tx.ExecContext(r.t.ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, position)
			VALUES ($1,$2,$3,$4,$5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, i); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *orderTxRepository) Get(id string) (domain.Order, error) {
	order, err := r.scanOrder(r.t.tx.QueryRowContext(r.t.ctx, `
		SELECT id, shipping_address1, shipping_address2, city, zip, country, phone,
		       status, total_price, user_id, date_ordered
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (r *orderTxRepository) List(page, pageSize int) ([]domain.Order, int64, error) {
	return r.listPage("", page, pageSize)
}

func (r *orderTxRepository) ListByUser(userID string, page, pageSize int) ([]domain.Order, int64, error) {
	return r.listPage(userID, page, pageSize)
}

func (r *orderTxRepository) listPage(userID string, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}

	var (
		total int64
		args  []any
		where string
	)
	if userID != "" {
		where = "WHERE user_id = $1"
		args = append(args, userID)
	}

	if err := r.t.tx.QueryRowContext(r.t.ctx,
		"SELECT COUNT(*) FROM orders "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT id, shipping_address1, shipping_address2, city, zip, country, phone,
		       status, total_price, user_id, date_ordered
		FROM orders ` + where + `
		ORDER BY date_ordered DESC, id DESC`
	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, pageSize, (page-1)*pageSize)
	}

	orders, err := r.queryOrders(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderTxRepository) ListAll() ([]domain.Order, error) {
	return r.queryOrders(`
		SELECT id, shipping_address1, shipping_address2, city, zip, country, phone,
		       status, total_price, user_id, date_ordered
		FROM orders
		ORDER BY date_ordered DESC, id DESC
	`)
}

func (r *orderTxRepository) Save(order domain.Order) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `
		UPDATE orders
		SET shipping_address1 = $1,
		    shipping_address2 = $2,
		    city = $3,
		    zip = $4,
		    country = $5,
		    phone = $6,
		    status = $7,
		    total_price = $8,
		    user_id = $9,
		    date_ordered = $10
		WHERE id = $11
	`,
		order.ShippingAddress1, order.ShippingAddress2, order.City, order.Zip,
		order.Country, order.Phone, string(order.Status), order.TotalPrice,
		order.UserID, order.DateOrdered, order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderTxRepository) Delete(id string) error {
	if _, err := r.t.tx.ExecContext(r.t.ctx,
		`DELETE FROM order_items WHERE order_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	res, err := r.t.tx.ExecContext(r.t.ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderTxRepository) queryOrders(query string, args ...any) ([]domain.Order, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderTxRepository) scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	if err := row.Scan(
		&order.ID, &order.ShippingAddress1, &order.ShippingAddress2, &order.City,
		&order.Zip, &order.Country, &order.Phone, &status,
		&order.TotalPrice, &order.UserID, &order.DateOrdered,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderTxRepository) loadItems(orderID string) ([]domain.OrderItem, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx, `
		SELECT id, product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

var _ domain.OrderRepository = (*orderTxRepository)(nil)
