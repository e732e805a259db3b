package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/metrics"
)

const (
	// DefaultPageSize применяется, когда размер страницы не задан.
	DefaultPageSize = 20
	// MaxPageSize ограничивает размер страницы сверху.
	MaxPageSize = 100
)

// Service — движок заказов: создание с резервированием стока, переходы
// статусов с возвратом стока, удаление и статистика. Каждая операция —
// одна транзакция: либо все записи фиксируются, либо ни одна.
type Service struct {
	txm     domain.TxManager
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр движка заказов.
func NewService(txm domain.TxManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		txm:     txm,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт движок без метрик (для тестов).
func NewServiceWithoutMetrics(txm domain.TxManager, logger *log.Entry) *Service {
	svc := NewService(txm, logger)
	svc.metrics = nil
	return svc
}

// ItemInput — запрошенная позиция заказа.
type ItemInput struct {
	ProductID string
	Quantity  int32
}

// CreateInput — запрос на создание заказа.
type CreateInput struct {
	UserID           string
	Items            []ItemInput
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
}

// Details — заказ с развёрнутыми ссылками для ответа наружу.
// Товары разворачиваются "вживую": правки каталога после создания заказа
// видны при чтении, но не меняют зафиксированную сумму.
type Details struct {
	Order    domain.Order
	User     domain.User
	Products map[string]domain.Product
	History  []domain.StatusChange
}

// Create создаёт заказ: проверяет пользователя и каждую позицию, списывает
// сток позиция за позицией, считает сумму и сохраняет заказ. Любая ошибка
// откатывает все уже применённые списания.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrItemsRequired
	}
	if in.UserID == "" {
		return domain.Order{}, domain.ErrUserRequired
	}

	start := time.Now()
	var created domain.Order

	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		user, err := tx.Users().Get(in.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return fmt.Errorf("user %s: %w", in.UserID, domain.ErrUnknownUser)
			}
			return fmt.Errorf("load user: %w", err)
		}

		now := time.Now().UTC()
		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(in.Items))

		for _, item := range in.Items {
			if item.Quantity < 1 {
				return domain.ErrItemQuantityInvalid
			}

			product, err := tx.Products().GetForUpdate(item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return fmt.Errorf("product %s: %w", item.ProductID, domain.ErrUnknownProduct)
				}
				return fmt.Errorf("load product: %w", err)
			}

			if product.CountInStock < item.Quantity {
				return fmt.Errorf("insufficient stock for product %s: %w", product.Name, domain.ErrInsufficientStock)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt32(item.Quantity)))

			// Сток списывается сразу, позиция за позицией: повторение
			// товара в списке видит уже уменьшенный остаток.
			product.CountInStock -= item.Quantity
			if err := tx.Products().Save(product); err != nil {
				return fmt.Errorf("save product stock: %w", err)
			}

			items = append(items, domain.OrderItem{
				ID:        uuid.NewString(),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order := domain.Order{
			ID:               uuid.NewString(),
			Items:            items,
			ShippingAddress1: in.ShippingAddress1,
			ShippingAddress2: in.ShippingAddress2,
			City:             in.City,
			Zip:              in.Zip,
			Country:          in.Country,
			Phone:            in.Phone,
			Status:           domain.OrderStatusPending,
			TotalPrice:       total,
			UserID:           user.ID,
			DateOrdered:      now,
		}

		if errs := order.ValidateInvariants(); len(errs) > 0 {
			return errors.Join(errs...)
		}

		if err := tx.Orders().Create(order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := tx.History().Append(domain.StatusChange{
			OrderID:    order.ID,
			To:         order.Status,
			OccurredAt: now,
		}); err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		if err := s.enqueueOrderEvent(tx, kafka.EventTypeOrderCreated, order, ""); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) && s.metrics != nil {
			s.metrics.RecordStockRejection()
		}
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.RecordCreateDuration(time.Since(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"user_id":  created.UserID,
		"total":    created.TotalPrice.String(),
	}).Info("order created")

	return created, nil
}

// Get возвращает заказ с развёрнутым пользователем, товарами и историей статусов.
func (s *Service) Get(ctx context.Context, id string) (Details, error) {
	var details Details

	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		order, err := tx.Orders().Get(id)
		if err != nil {
			return err
		}
		details.Order = order

		user, err := tx.Users().Get(order.UserID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("load user: %w", err)
		}
		details.User = user

		details.Products = make(map[string]domain.Product, len(order.Items))
		for _, item := range order.Items {
			product, err := tx.Products().Get(item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					// Товар удалён из каталога после создания заказа; сумма
					// заказа зафиксирована, поэтому чтение не ломаем.
					s.logger.WithFields(log.Fields{
						"order_id":   order.ID,
						"product_id": item.ProductID,
					}).Warn("order references product missing from catalog")
					continue
				}
				return fmt.Errorf("load product: %w", err)
			}
			details.Products[product.ID] = product
		}

		history, err := tx.History().List(order.ID)
		if err != nil {
			return fmt.Errorf("load status history: %w", err)
		}
		details.History = history
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	return details, nil
}

// List возвращает страницу заказов, всех или одного пользователя.
func (s *Service) List(ctx context.Context, userID string, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var (
		orders []domain.Order
		total  int64
	)
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		if userID == "" {
			orders, total, err = tx.Orders().List(page, pageSize)
		} else {
			orders, total, err = tx.Orders().ListByUser(userID, page, pageSize)
		}
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus переводит заказ в новый статус. Переход в Cancelled из
// любого другого статуса возвращает сток; повторная отмена стока не трогает.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (domain.Order, error) {
	newStatus, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return domain.Order{}, fmt.Errorf("status %q: %w", rawStatus, err)
	}

	var (
		updated   domain.Order
		prior     domain.OrderStatus
		restored  int64
		cancelled bool
	)

	err = s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		order, err := tx.Orders().Get(id)
		if err != nil {
			return err
		}

		prior = order.Status
		cancelled = newStatus.Equals(domain.OrderStatusCancelled) && !prior.Equals(domain.OrderStatusCancelled)
		if cancelled {
			restored, err = restoreStock(tx, order)
			if err != nil {
				return err
			}
		}

		order.Status = newStatus
		if err := tx.Orders().Save(order); err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		if !prior.Equals(newStatus) {
			now := time.Now().UTC()
			if err := tx.History().Append(domain.StatusChange{
				OrderID:    order.ID,
				From:       prior,
				To:         newStatus,
				OccurredAt: now,
			}); err != nil {
				return fmt.Errorf("append status history: %w", err)
			}

			eventType := kafka.EventTypeOrderStatusChanged
			if cancelled {
				eventType = kafka.EventTypeOrderCancelled
			}
			if err := s.enqueueOrderEvent(tx, eventType, order, prior); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(newStatus))
		if cancelled {
			s.metrics.RecordOrderCancelled()
			s.metrics.RecordStockRestored(restored)
		}
	}
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     string(prior),
		"to":       string(newStatus),
	}).Info("order status updated")

	return updated, nil
}

// Delete удаляет заказ. Неотменённый заказ перед удалением возвращает
// сток; уже отменённый вернул его при отмене и второй раз не кредитуется.
func (s *Service) Delete(ctx context.Context, id string) error {
	var restored int64

	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		order, err := tx.Orders().Get(id)
		if err != nil {
			return err
		}

		if !order.Status.Equals(domain.OrderStatusCancelled) {
			restored, err = restoreStock(tx, order)
			if err != nil {
				return err
			}
		}

		if err := tx.Orders().Delete(id); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return s.enqueueOrderEvent(tx, kafka.EventTypeOrderDeleted, order, order.Status)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderDeleted()
		s.metrics.RecordStockRestored(restored)
	}
	s.logger.WithField("order_id", id).Info("order deleted")

	return nil
}

// Statistics считает агрегат полным сканом множества заказов.
// Материализованных счётчиков нет: каждая выдача отражает текущее состояние.
func (s *Service) Statistics(ctx context.Context) (domain.OrderStatistics, error) {
	var stats domain.OrderStatistics

	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		orders, err := tx.Orders().ListAll()
		if err != nil {
			return fmt.Errorf("scan orders: %w", err)
		}

		revenue := decimal.Zero
		for _, order := range orders {
			switch {
			case order.Status.Equals(domain.OrderStatusPending):
				stats.PendingOrders++
			case order.Status.Equals(domain.OrderStatusCompleted):
				stats.CompletedOrders++
				revenue = revenue.Add(order.TotalPrice)
			case order.Status.Equals(domain.OrderStatusCancelled):
				stats.CancelledOrders++
			}
		}

		stats.TotalOrders = int64(len(orders))
		stats.TotalRevenue = revenue
		// Знаменатель — общее число заказов, не только Completed:
		// поведение исходной системы сохранено намеренно.
		if stats.TotalOrders > 0 {
			stats.AverageOrderValue = revenue.DivRound(decimal.NewFromInt(stats.TotalOrders), 2)
		} else {
			stats.AverageOrderValue = decimal.Zero
		}
		return nil
	})
	if err != nil {
		return domain.OrderStatistics{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatisticsScan()
	}
	return stats, nil
}

// restoreStock возвращает на склад количество по каждой позиции заказа.
// Проверка доступности не нужна: восстановление только добавляет.
func restoreStock(tx domain.Tx, order domain.Order) (int64, error) {
	var restored int64
	for _, item := range order.Items {
		product, err := tx.Products().GetForUpdate(item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return 0, fmt.Errorf("restore stock for product %s: %w", item.ProductID, domain.ErrCatalogInconsistent)
			}
			return 0, fmt.Errorf("load product: %w", err)
		}
		product.CountInStock += item.Quantity
		if err := tx.Products().Save(product); err != nil {
			return 0, fmt.Errorf("save product stock: %w", err)
		}
		restored += int64(item.Quantity)
	}
	return restored, nil
}

func (s *Service) enqueueOrderEvent(tx domain.Tx, eventType kafka.EventType, order domain.Order, prior domain.OrderStatus) error {
	event := kafka.NewOrderEvent(eventType, order.ID, order.UserID, string(order.Status))
	event.PrevStatus = string(prior)
	event.TotalPrice = order.TotalPrice.String()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	if _, err := tx.Outbox().Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}
	return nil
}
