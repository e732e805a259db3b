package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// orderRepositoryInMemory — реализация OrderRepository поверх dataset.
// Блокировок нет: доступ сериализован транзакцией Store.
type orderRepositoryInMemory struct {
	data *dataset
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	if _, exists := r.data.orders[order.ID]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.data.orders[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	order, ok := r.data.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List возвращает страницу заказов, новые первыми.
func (r *orderRepositoryInMemory) List(page, pageSize int) ([]domain.Order, int64, error) {
	all := r.sortedOrders(func(domain.Order) bool { return true })
	return paginateOrders(all, page, pageSize), int64(len(all)), nil
}

// ListByUser возвращает страницу заказов пользователя.
func (r *orderRepositoryInMemory) ListByUser(userID string, page, pageSize int) ([]domain.Order, int64, error) {
	filtered := r.sortedOrders(func(order domain.Order) bool { return order.UserID == userID })
	return paginateOrders(filtered, page, pageSize), int64(len(filtered)), nil
}

// ListAll возвращает все заказы для полного скана статистики.
func (r *orderRepositoryInMemory) ListAll() ([]domain.Order, error) {
	return r.sortedOrders(func(domain.Order) bool { return true }), nil
}

// Save перезаписывает существующий заказ.
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	if _, ok := r.data.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.data.orders[order.ID] = cloneOrder(order)
	return nil
}

// Delete удаляет заказ вместе с позициями.
func (r *orderRepositoryInMemory) Delete(id string) error {
	if _, ok := r.data.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.data.orders, id)
	return nil
}

func (r *orderRepositoryInMemory) sortedOrders(keep func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0, len(r.data.orders))
	for _, order := range r.data.orders {
		if !keep(order) {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DateOrdered.Equal(result[j].DateOrdered) {
			return result[i].DateOrdered.After(result[j].DateOrdered)
		}
		return result[i].ID > result[j].ID
	})

	return result
}

func paginateOrders(orders []domain.Order, page, pageSize int) []domain.Order {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return orders
	}

	start := (page - 1) * pageSize
	if start >= len(orders) {
		return []domain.Order{}
	}
	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
