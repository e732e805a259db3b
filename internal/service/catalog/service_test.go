package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

func newCatalogWithCategory(t *testing.T) (*catalog.Service, domain.Category) {
	t.Helper()

	svc := catalog.NewService(memory.NewStore(), nil)
	category, err := svc.CreateCategory(context.Background(), catalog.CategoryInput{
		Name:  "electronics",
		Icon:  "chip",
		Color: "#00ff00",
	})
	require.NoError(t, err)
	return svc, category
}

func TestService_CreateProduct(t *testing.T) {
	t.Parallel()

	svc, category := newCatalogWithCategory(t)

	product, err := svc.CreateProduct(context.Background(), catalog.ProductInput{
		Name:         "keyboard",
		Description:  "mechanical",
		Brand:        "acme",
		Price:        "129.90",
		CategoryID:   category.ID,
		CountInStock: 7,
	})
	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.False(t, product.DateCreated.IsZero())
	require.True(t, product.Price.Equal(decimal.RequireFromString("129.90")))

	got, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, "keyboard", got.Name)
}

func TestService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc, category := newCatalogWithCategory(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, catalog.ProductInput{
		Name:       "keyboard",
		Price:      "not-a-price",
		CategoryID: category.ID,
	})
	require.ErrorIs(t, err, domain.ErrProductPriceInvalid)

	_, err = svc.CreateProduct(ctx, catalog.ProductInput{
		Price:      "10.00",
		CategoryID: category.ID,
	})
	require.ErrorIs(t, err, domain.ErrProductNameRequired)

	// Категория обязана существовать на момент создания.
	_, err = svc.CreateProduct(ctx, catalog.ProductInput{
		Name:       "keyboard",
		Price:      "10.00",
		CategoryID: "missing-category",
	})
	require.ErrorIs(t, err, domain.ErrProductCategoryRequired)
}

func TestService_UpdateProduct_PreservesIdentity(t *testing.T) {
	t.Parallel()

	svc, category := newCatalogWithCategory(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, catalog.ProductInput{
		Name:         "keyboard",
		Price:        "100.00",
		CategoryID:   category.ID,
		CountInStock: 3,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, created.ID, catalog.ProductInput{
		Name:         "keyboard pro",
		Price:        "150.00",
		CategoryID:   category.ID,
		CountInStock: 5,
		IsFeatured:   true,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.DateCreated, updated.DateCreated)
	require.Equal(t, "keyboard pro", updated.Name)
	require.Equal(t, int32(5), updated.CountInStock)

	_, err = svc.UpdateProduct(ctx, "missing-product", catalog.ProductInput{
		Name:       "x",
		Price:      "1.00",
		CategoryID: category.ID,
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestService_ListProducts_ByCategory(t *testing.T) {
	t.Parallel()

	svc, first := newCatalogWithCategory(t)
	ctx := context.Background()

	second, err := svc.CreateCategory(ctx, catalog.CategoryInput{Name: "furniture"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, catalog.ProductInput{
		Name: "keyboard", Price: "10.00", CategoryID: first.ID,
	})
	require.NoError(t, err)
	featured, err := svc.CreateProduct(ctx, catalog.ProductInput{
		Name: "chair", Price: "50.00", CategoryID: second.ID, IsFeatured: true,
	})
	require.NoError(t, err)

	all, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := svc.ListProducts(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "chair", filtered[0].Name)

	highlighted, err := svc.ListFeaturedProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, highlighted, 1)
	require.Equal(t, featured.ID, highlighted[0].ID)
}

func TestService_Categories(t *testing.T) {
	t.Parallel()

	svc, category := newCatalogWithCategory(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, catalog.CategoryInput{})
	require.ErrorIs(t, err, domain.ErrCategoryNameRequired)

	updated, err := svc.UpdateCategory(ctx, category.ID, catalog.CategoryInput{
		Name: "gadgets",
	})
	require.NoError(t, err)
	require.Equal(t, "gadgets", updated.Name)

	_, err = svc.UpdateCategory(ctx, "missing", catalog.CategoryInput{Name: "x"})
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
	require.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), domain.ErrCategoryNotFound)
}
