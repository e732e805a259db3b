package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Store — in-memory хранилище каталога для локальной разработки и тестов.
// Один глобальный mutex сериализует транзакции, поэтому check-and-decrement
// стока безопасен без дополнительных блокировок.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

type dataset struct {
	orders     map[string]domain.Order
	products   map[string]domain.Product
	users      map[string]domain.User
	categories map[string]domain.Category
	history    map[string][]domain.StatusChange
	outbox     map[string]*outboxRecord
	outboxSeq  int64
}

func newDataset() *dataset {
	return &dataset{
		orders:     make(map[string]domain.Order),
		products:   make(map[string]domain.Product),
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		history:    make(map[string][]domain.StatusChange),
		outbox:     make(map[string]*outboxRecord),
	}
}

// clone делает глубокую копию состояния для отката транзакции.
func (d *dataset) clone() *dataset {
	cp := &dataset{
		orders:     make(map[string]domain.Order, len(d.orders)),
		products:   make(map[string]domain.Product, len(d.products)),
		users:      make(map[string]domain.User, len(d.users)),
		categories: make(map[string]domain.Category, len(d.categories)),
		history:    make(map[string][]domain.StatusChange, len(d.history)),
		outbox:     make(map[string]*outboxRecord, len(d.outbox)),
		outboxSeq:  d.outboxSeq,
	}
	for id, order := range d.orders {
		cp.orders[id] = cloneOrder(order)
	}
	for id, product := range d.products {
		cp.products[id] = product
	}
	for id, user := range d.users {
		cp.users[id] = user
	}
	for id, category := range d.categories {
		cp.categories[id] = category
	}
	for id, changes := range d.history {
		cp.history[id] = append([]domain.StatusChange(nil), changes...)
	}
	for id, record := range d.outbox {
		rec := *record
		rec.msg.Payload = append([]byte(nil), record.msg.Payload...)
		cp.outbox[id] = &rec
	}
	return cp
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// WithinTx исполняет fn под глобальной блокировкой и откатывает все
// изменения, если fn вернула ошибку.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&storeTx{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// storeTx отдаёт репозитории без собственных блокировок:
// весь доступ уже сериализован блокировкой Store.
type storeTx struct {
	data *dataset
}

func (t *storeTx) Orders() domain.OrderRepository        { return &orderRepositoryInMemory{data: t.data} }
func (t *storeTx) Products() domain.ProductRepository    { return &productRepositoryInMemory{data: t.data} }
func (t *storeTx) Users() domain.UserRepository          { return &userRepositoryInMemory{data: t.data} }
func (t *storeTx) Categories() domain.CategoryRepository { return &categoryRepositoryInMemory{data: t.data} }
func (t *storeTx) History() domain.HistoryRepository     { return &historyRepositoryInMemory{data: t.data} }
func (t *storeTx) Outbox() domain.OutboxRepository       { return &outboxRepositoryInMemory{data: t.data} }

var (
	_ domain.TxManager = (*Store)(nil)
	_ domain.Tx        = (*storeTx)(nil)
)
