package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Service управляет каталогом: товары и категории.
// Движок заказов читает каталог через те же репозитории, поэтому все
// изменения идут внутри транзакции и заказы видят согласованный сток.
type Service struct {
	txm    domain.TxManager
	logger *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(txm domain.TxManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-service")
	}
	return &Service{txm: txm, logger: logger}
}

// ProductInput — поля товара при создании и обновлении.
type ProductInput struct {
	Name            string
	Description     string
	RichDescription string
	Image           string
	Brand           string
	Price           string
	CategoryID      string
	CountInStock    int32
	Rating          float64
	NumReviews      int32
	IsFeatured      bool
}

// CreateProduct добавляет товар в каталог. Категория должна существовать.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	product, err := productFromInput(in)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = uuid.NewString()
	product.DateCreated = time.Now().UTC()

	err = s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Categories().Get(product.CategoryID); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return fmt.Errorf("category %s: %w", product.CategoryID, domain.ErrProductCategoryRequired)
			}
			return fmt.Errorf("load category: %w", err)
		}
		return tx.Products().Create(product)
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("product created")
	return product, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		product, err = tx.Products().Get(id)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// ListProducts возвращает товары, опционально отфильтрованные по категории.
func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var products []domain.Product
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		products, err = tx.Products().List(categoryID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListFeaturedProducts возвращает до limit рекомендуемых товаров.
func (s *Service) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		products, err = tx.Products().ListFeatured(limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return products, nil
}

// UpdateProduct перезаписывает поля существующего товара.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	updated, err := productFromInput(in)
	if err != nil {
		return domain.Product{}, err
	}

	err = s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		current, err := tx.Products().Get(id)
		if err != nil {
			return err
		}
		if _, err := tx.Categories().Get(updated.CategoryID); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return fmt.Errorf("category %s: %w", updated.CategoryID, domain.ErrProductCategoryRequired)
			}
			return fmt.Errorf("load category: %w", err)
		}
		updated.ID = current.ID
		updated.DateCreated = current.DateCreated
		return tx.Products().Save(updated)
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", id).Info("product updated")
	return updated, nil
}

// DeleteProduct удаляет товар из каталога. Заказы, ссылающиеся на него,
// сохраняют зафиксированную сумму; вернуть по ним сток уже нельзя.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.Products().Delete(id)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// CategoryInput — поля категории при создании и обновлении.
type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

// CreateCategory добавляет категорию каталога.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	if in.Name == "" {
		return domain.Category{}, domain.ErrCategoryNameRequired
	}

	category := domain.Category{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Icon:  in.Icon,
		Color: in.Color,
	}
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.Categories().Create(category)
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.WithFields(log.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("category created")
	return category, nil
}

// GetCategory возвращает категорию по идентификатору.
func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var category domain.Category
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		category, err = tx.Categories().Get(id)
		return err
	})
	if err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// ListCategories возвращает все категории каталога.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		categories, err = tx.Categories().List()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory перезаписывает поля существующей категории.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	if in.Name == "" {
		return domain.Category{}, domain.ErrCategoryNameRequired
	}

	category := domain.Category{ID: id, Name: in.Name, Icon: in.Icon, Color: in.Color}
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Categories().Get(id); err != nil {
			return err
		}
		return tx.Categories().Save(category)
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.WithField("category_id", id).Info("category updated")
	return category, nil
}

// DeleteCategory удаляет категорию.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.Categories().Delete(id)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("category_id", id).Info("category deleted")
	return nil
}

func productFromInput(in ProductInput) (domain.Product, error) {
	price, err := domain.ParsePrice(in.Price)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		Name:            in.Name,
		Description:     in.Description,
		RichDescription: in.RichDescription,
		Image:           in.Image,
		Brand:           in.Brand,
		Price:           price,
		CategoryID:      in.CategoryID,
		CountInStock:    in.CountInStock,
		Rating:          in.Rating,
		NumReviews:      in.NumReviews,
		IsFeatured:      in.IsFeatured,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}
	return product, nil
}
