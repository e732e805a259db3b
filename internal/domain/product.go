package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога. CountInStock — единственный складской счётчик:
// он уменьшается при создании заказа и восстанавливается при отмене/удалении.
type Product struct {
	ID              string
	Name            string
	Description     string
	RichDescription string
	Image           string
	Brand           string
	Price           decimal.Decimal
	CategoryID      string
	CountInStock    int32
	Rating          float64
	NumReviews      int32
	IsFeatured      bool
	DateCreated     time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if !p.Price.IsPositive() {
		errs = append(errs, ErrProductPriceInvalid)
	}
	if p.CategoryID == "" {
		errs = append(errs, ErrProductCategoryRequired)
	}
	if p.CountInStock < 0 {
		errs = append(errs, ErrProductStockNegative)
	}

	return errs
}

// Category группирует товары каталога.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string
}
