package domain

import (
	"context"
	"time"
)

// Tx открывает доступ к репозиториям, привязанным к одной транзакции.
type Tx interface {
	Orders() OrderRepository
	Products() ProductRepository
	Users() UserRepository
	Categories() CategoryRepository
	History() HistoryRepository
	Outbox() OutboxRepository
}

// TxManager исполняет fn как одну атомарную единицу работы: либо все
// записи видны после возврата, либо ни одна.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями. Возвращает
	// ErrOrderExists, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает страницу заказов (новые первыми) и общее число заказов.
	List(page, pageSize int) ([]Order, int64, error)
	// ListByUser возвращает страницу заказов пользователя и их общее число.
	ListByUser(userID string, page, pageSize int) ([]Order, int64, error)
	// ListAll возвращает все заказы; используется агрегатором статистики.
	ListAll() ([]Order, error)
	// Save перезаписывает существующий заказ или возвращает ErrOrderNotFound.
	Save(order Order) error
	// Delete удаляет заказ вместе с позициями или возвращает ErrOrderNotFound.
	Delete(id string) error
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(product Product) error
	Get(id string) (Product, error)
	// GetForUpdate возвращает товар, удерживая блокировку строки до конца
	// транзакции: check-and-decrement стока обязан сериализоваться.
	GetForUpdate(id string) (Product, error)
	// List возвращает товары, опционально отфильтрованные по категории.
	List(categoryID string) ([]Product, error)
	ListFeatured(limit int) ([]Product, error)
	Save(product Product) error
	Delete(id string) error
}

// UserRepository описывает требования к хранилищу пользователей.
type UserRepository interface {
	Create(user User) error
	Get(id string) (User, error)
	// GetByEmail возвращает пользователя по email или ErrUserNotFound.
	GetByEmail(email string) (User, error)
	List() ([]User, error)
	Delete(id string) error
}

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	Create(category Category) error
	Get(id string) (Category, error)
	List() ([]Category, error)
	Save(category Category) error
	Delete(id string) error
}

// HistoryRepository хранит историю статусов заказа.
// Записи переживают удаление заказа: это аудиторский след.
type HistoryRepository interface {
	Append(change StatusChange) error
	List(orderID string) ([]StatusChange, error)
}

// OutboxPublisher публикует событие наружу; должен быть идемпотентным.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
// Enqueue вызывается внутри бизнес-транзакции, остальные методы — из
// фонового воркера.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
