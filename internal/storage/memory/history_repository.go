package memory

import "github.com/vladislavdragonenkov/ecom/internal/domain"

// historyRepositoryInMemory хранит историю статусов заказов.
// Записи переживают удаление заказа.
type historyRepositoryInMemory struct {
	data *dataset
}

func (r *historyRepositoryInMemory) Append(change domain.StatusChange) error {
	r.data.history[change.OrderID] = append(r.data.history[change.OrderID], change)
	return nil
}

func (r *historyRepositoryInMemory) List(orderID string) ([]domain.StatusChange, error) {
	return append([]domain.StatusChange(nil), r.data.history[orderID]...), nil
}

var _ domain.HistoryRepository = (*historyRepositoryInMemory)(nil)
