package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// categoryRepositoryInMemory — реализация CategoryRepository поверх dataset.
type categoryRepositoryInMemory struct {
	data *dataset
}

func (r *categoryRepositoryInMemory) Create(category domain.Category) error {
	r.data.categories[category.ID] = category
	return nil
}

func (r *categoryRepositoryInMemory) Get(id string) (domain.Category, error) {
	category, ok := r.data.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (r *categoryRepositoryInMemory) List() ([]domain.Category, error) {
	result := make([]domain.Category, 0, len(r.data.categories))
	for _, category := range r.data.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *categoryRepositoryInMemory) Save(category domain.Category) error {
	if _, ok := r.data.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.data.categories[category.ID] = category
	return nil
}

func (r *categoryRepositoryInMemory) Delete(id string) error {
	if _, ok := r.data.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.data.categories, id)
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
