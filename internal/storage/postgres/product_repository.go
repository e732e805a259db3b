package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const productColumns = `id, name, description, rich_description, image, brand,
	price, category_id, count_in_stock, rating, num_reviews, is_featured, date_created`

type productTxRepository struct {
	t *storeTx
}

func (r *productTxRepository) Create(product domain.Product) error {
	_, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO products (
			id, name, description, rich_description, image, brand,
			price, category_id, count_in_stock, rating, num_reviews, is_featured, date_created
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		product.ID, product.Name, product.Description, product.RichDescription,
		product.Image, product.Brand, product.Price, product.CategoryID,
		product.CountInStock, product.Rating, product.NumReviews,
		product.IsFeatured, product.DateCreated,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productTxRepository) Get(id string) (domain.Product, error) {
	return r.get(id, false)
}

// GetForUpdate блокирует строку товара до конца транзакции: конкурентные
// check-and-decrement стока сериализуются на уровне БД.
func (r *productTxRepository) GetForUpdate(id string) (domain.Product, error) {
	return r.get(id, true)
}

func (r *productTxRepository) get(id string, forUpdate bool) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	product, err := scanProduct(r.t.tx.QueryRowContext(r.t.ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productTxRepository) List(categoryID string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if categoryID != "" {
		query += " WHERE category_id = $1"
		args = append(args, categoryID)
	}
	query += " ORDER BY date_created DESC, id DESC"

	return r.queryProducts(query, args...)
}

func (r *productTxRepository) ListFeatured(limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_featured
		ORDER BY date_created DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	return r.queryProducts(query, args...)
}

func (r *productTxRepository) Save(product domain.Product) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `
		UPDATE products
		SET name = $1,
		    description = $2,
		    rich_description = $3,
		    image = $4,
		    brand = $5,
		    price = $6,
		    category_id = $7,
		    count_in_stock = $8,
		    rating = $9,
		    num_reviews = $10,
		    is_featured = $11
		WHERE id = $12
	`,
		product.Name, product.Description, product.RichDescription, product.Image,
		product.Brand, product.Price, product.CategoryID, product.CountInStock,
		product.Rating, product.NumReviews, product.IsFeatured, product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productTxRepository) Delete(id string) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productTxRepository) queryProducts(query string, args ...any) ([]domain.Product, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.RichDescription,
		&product.Image, &product.Brand, &product.Price, &product.CategoryID,
		&product.CountInStock, &product.Rating, &product.NumReviews,
		&product.IsFeatured, &product.DateCreated,
	); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

var _ domain.ProductRepository = (*productTxRepository)(nil)
