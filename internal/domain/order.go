package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа в каталоге.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, сток зарезервирован, исполнение не началось.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusCompleted — заказ исполнен; только такие заказы входят в выручку.
	OrderStatusCompleted OrderStatus = "Completed"
	// OrderStatusCancelled — заказ отменён, зарезервированный сток возвращён.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus разбирает статус без учёта регистра.
// Множество статусов закрытое, неизвестные строки отклоняются.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled} {
		if status.Equals(OrderStatus(raw)) {
			return status, nil
		}
	}
	return "", ErrUnknownOrderStatus
}

// Equals сравнивает статусы без учёта регистра.
func (s OrderStatus) Equals(other OrderStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

// OrderItem представляет одну позицию заказа: ссылка на товар и количество.
type OrderItem struct {
	ID        string
	ProductID string
	Quantity  int32
}

// Order агрегирует позиции, адрес доставки, статус и зафиксированную сумму.
// TotalPrice вычисляется один раз при создании и при мутациях не пересчитывается.
type Order struct {
	ID               string
	Items            []OrderItem
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
	Status           OrderStatus
	TotalPrice       decimal.Decimal
	UserID           string
	DateOrdered      time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			errs = append(errs, ErrItemQuantityInvalid)
		}
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
	}
	if o.TotalPrice.IsNegative() {
		errs = append(errs, ErrTotalPriceNegative)
	}

	return errs
}

// StatusChange — одна запись истории статусов заказа.
// Для события создания From пустой.
type StatusChange struct {
	OrderID    string
	From       OrderStatus
	To         OrderStatus
	OccurredAt time.Time
}
