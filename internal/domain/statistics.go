package domain

import "github.com/shopspring/decimal"

// OrderStatistics — агрегат по всему множеству заказов.
// TotalRevenue суммирует только Completed-заказы, но AverageOrderValue
// делит выручку на общее число заказов — поведение исходной системы
// сохранено намеренно.
type OrderStatistics struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	PendingOrders     int64
	CompletedOrders   int64
	CancelledOrders   int64
}
