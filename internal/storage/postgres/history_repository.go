package postgres

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// historyTxRepository пишет историю статусов заказа. Записи не ссылаются
// на orders через внешний ключ: аудиторский след переживает удаление заказа.
type historyTxRepository struct {
	t *storeTx
}

func (r *historyTxRepository) Append(change domain.StatusChange) error {
	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now().UTC()
	}

	if _, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, occurred_at)
		VALUES ($1,$2,$3,$4)
	`, change.OrderID, string(change.From), string(change.To), change.OccurredAt); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (r *historyTxRepository) List(orderID string) ([]domain.StatusChange, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx, `
		SELECT order_id, from_status, to_status, occurred_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY occurred_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	changes := make([]domain.StatusChange, 0)
	for rows.Next() {
		var (
			change   domain.StatusChange
			from, to string
		)
		if err := rows.Scan(&change.OrderID, &from, &to, &change.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan status history row: %w", err)
		}
		change.From = domain.OrderStatus(from)
		change.To = domain.OrderStatus(to)
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history rows: %w", err)
	}

	return changes, nil
}

var _ domain.HistoryRepository = (*historyTxRepository)(nil)
