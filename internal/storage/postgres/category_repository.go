package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

type categoryTxRepository struct {
	t *storeTx
}

func (r *categoryTxRepository) Create(category domain.Category) error {
	if _, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO categories (id, name, icon, color)
		VALUES ($1,$2,$3,$4)
	`, category.ID, category.Name, category.Icon, category.Color); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *categoryTxRepository) Get(id string) (domain.Category, error) {
	var category domain.Category
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		SELECT id, name, icon, color
		FROM categories
		WHERE id = $1
	`, id).Scan(&category.ID, &category.Name, &category.Icon, &category.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *categoryTxRepository) List() ([]domain.Category, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx, `
		SELECT id, name, icon, color
		FROM categories
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Icon, &category.Color); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *categoryTxRepository) Save(category domain.Category) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `
		UPDATE categories
		SET name = $1, icon = $2, color = $3
		WHERE id = $4
	`, category.Name, category.Icon, category.Color, category.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryTxRepository) Delete(id string) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

var _ domain.CategoryRepository = (*categoryTxRepository)(nil)
