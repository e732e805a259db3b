package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	// EventTypeOrderCreated — заказ создан, сток зарезервирован.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeOrderStatusChanged — статус заказа изменился.
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	// EventTypeOrderCancelled — заказ отменён, сток возвращён.
	EventTypeOrderCancelled EventType = "order.cancelled"
	// EventTypeOrderDeleted — заказ удалён.
	EventTypeOrderDeleted EventType = "order.deleted"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "ecom.order.events"
	TopicDeadLetterQueue = "ecom.dlq" // Dead Letter Queue для failed messages
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	TotalPrice string    `json:"total_price,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, userID, status string) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}
