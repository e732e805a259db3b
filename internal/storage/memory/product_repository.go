package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// productRepositoryInMemory — реализация ProductRepository поверх dataset.
type productRepositoryInMemory struct {
	data *dataset
}

func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.data.products[product.ID] = product
	return nil
}

func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	product, ok := r.data.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetForUpdate эквивалентен Get: глобальная блокировка Store уже
// сериализует чтение-изменение-запись стока.
func (r *productRepositoryInMemory) GetForUpdate(id string) (domain.Product, error) {
	return r.Get(id)
}

func (r *productRepositoryInMemory) List(categoryID string) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(r.data.products))
	for _, product := range r.data.products {
		if categoryID != "" && product.CategoryID != categoryID {
			continue
		}
		result = append(result, product)
	}
	sortProducts(result)
	return result, nil
}

func (r *productRepositoryInMemory) ListFeatured(limit int) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	for _, product := range r.data.products {
		if product.IsFeatured {
			result = append(result, product)
		}
	}
	sortProducts(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *productRepositoryInMemory) Save(product domain.Product) error {
	if _, ok := r.data.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.data.products[product.ID] = product
	return nil
}

func (r *productRepositoryInMemory) Delete(id string) error {
	if _, ok := r.data.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.data.products, id)
	return nil
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].DateCreated.Equal(products[j].DateCreated) {
			return products[i].DateCreated.After(products[j].DateCreated)
		}
		return products[i].ID > products[j].ID
	})
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
