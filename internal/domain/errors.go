package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора пользователя в заказе.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (< 1).
	ErrItemQuantityInvalid = errors.New("item quantity must be at least 1")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка отрицательной суммы заказа.
	ErrTotalPriceNegative = errors.New("total_price must be non-negative")
	// ErrUnknownOrderStatus возвращается при статусе вне закрытого множества.
	ErrUnknownOrderStatus = errors.New("unknown order status")
	// ErrUnknownUser — заказ ссылается на несуществующего пользователя.
	// Это ошибка запроса, а не "not found": цель запроса — заказ, не пользователь.
	ErrUnknownUser = errors.New("order references unknown user")
	// ErrUnknownProduct — позиция заказа ссылается на несуществующий товар.
	ErrUnknownProduct = errors.New("order references unknown product")
	// ErrInsufficientStock — запрошенное количество превышает остаток на складе.
	ErrInsufficientStock = errors.New("insufficient stock")

	// Ошибки валидации товара.
	ErrProductNameRequired     = errors.New("product name is required")
	ErrProductPriceInvalid     = errors.New("product price must be greater than zero")
	ErrProductCategoryRequired = errors.New("product category is required")
	ErrProductStockNegative    = errors.New("count_in_stock must be non-negative")

	// Ошибки валидации справочников и пользователей.
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrUserNameRequired     = errors.New("user name is required")
	ErrUserEmailRequired    = errors.New("user email is required")
	ErrUserPasswordRequired = errors.New("user password is required")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound возвращается, если пользователь не найден в репозитории.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound возвращается, если категория не найдена в репозитории.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrEmailTaken — регистрация с уже занятым email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrOrderExists — повторное создание заказа с тем же ID.
	ErrOrderExists = errors.New("order already exists")
	// ErrCatalogInconsistent — заказ ссылается на товар, которого больше нет
	// в каталоге; восстановить сток невозможно, операция прерывается.
	ErrCatalogInconsistent = errors.New("order references a product missing from the catalog")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

var badRequestErrors = []error{
	ErrUserRequired,
	ErrItemsRequired,
	ErrItemQuantityInvalid,
	ErrItemProductRequired,
	ErrTotalPriceNegative,
	ErrUnknownOrderStatus,
	ErrUnknownUser,
	ErrUnknownProduct,
	ErrInsufficientStock,
	ErrProductNameRequired,
	ErrProductPriceInvalid,
	ErrProductCategoryRequired,
	ErrProductStockNegative,
	ErrCategoryNameRequired,
	ErrUserNameRequired,
	ErrUserEmailRequired,
	ErrUserPasswordRequired,
}

var notFoundErrors = []error{
	ErrOrderNotFound,
	ErrProductNotFound,
	ErrUserNotFound,
	ErrCategoryNotFound,
}

// IsBadRequest сообщает, что запрос некорректен относительно текущего
// состояния: несуществующие ссылки при создании, нехватка стока, пустые
// или невалидные поля.
func IsBadRequest(err error) bool {
	for _, candidate := range badRequestErrors {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// IsNotFound сообщает, что целевой ресурс операции не существует.
func IsNotFound(err error) bool {
	for _, candidate := range notFoundErrors {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// IsConflict сообщает о конфликте состояния: занятый email, дубликат
// заказа, рассинхронизация каталога при восстановлении стока.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrOrderExists) ||
		errors.Is(err, ErrCatalogInconsistent)
}
