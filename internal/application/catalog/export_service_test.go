package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

// pagingProvider serves a fixed number of full pages, then an empty one
type pagingProvider struct {
	code      commerce.ProviderCode
	pageSize  int
	pages     int
	served    int
	listErr   error
	endless   bool
	gotLimits []int
}

func (p *pagingProvider) Code() commerce.ProviderCode { return p.code }

func (p *pagingProvider) GetAllProducts(_ context.Context, limit int, cursor string) (commerce.ProductPage, error) {
	if p.listErr != nil {
		return commerce.ProductPage{}, p.listErr
	}
	p.gotLimits = append(p.gotLimits, limit)

	page := 1
	if cursor != "" {
		page, _ = strconv.Atoi(cursor)
	}
	if !p.endless && page > p.pages {
		return commerce.ProductPage{}, nil
	}

	products := make([]commerce.Product, 0, p.pageSize)
	for i := 0; i < p.pageSize; i++ {
		products = append(products, commerce.Product{
			ID:          fmt.Sprintf("p-%d-%d", page, i),
			SKU:         fmt.Sprintf("SKU-%d-%d", page, i),
			Title:       "Alpine Tent",
			Price:       decimal.NewFromFloat(199.99),
			Currency:    "AUD",
			StockStatus: commerce.StockStatusInStock,
		})
	}
	p.served++
	return commerce.ProductPage{
		Products:   products,
		NextCursor: strconv.Itoa(page + 1),
	}, nil
}

func (p *pagingProvider) GetProductDetails(context.Context, string) (*commerce.Product, error) {
	return nil, nil
}
func (p *pagingProvider) SearchProducts(context.Context, string, int) ([]commerce.Product, error) {
	return nil, nil
}
func (p *pagingProvider) GetProductByHandle(context.Context, string) (*commerce.Product, error) {
	return nil, nil
}
func (p *pagingProvider) AddToCart(context.Context, commerce.AddToCartRequest) (*commerce.CartResult, error) {
	return nil, nil
}
func (p *pagingProvider) GetCart(context.Context, string) (*commerce.Cart, error) { return nil, nil }
func (p *pagingProvider) UpdateCartItem(context.Context, string, int, string) (*commerce.Cart, error) {
	return nil, nil
}
func (p *pagingProvider) RemoveFromCart(context.Context, string, string) (*commerce.Cart, error) {
	return nil, nil
}

var _ commerce.CommerceProvider = (*pagingProvider)(nil)

func TestExportService_Export(t *testing.T) {
	t.Run("walks all pages until the catalog ends", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopware, pageSize: 3, pages: 2}
		service := NewExportService(provider, 250, 10, nil)

		result, err := service.Export(context.Background())
		require.NoError(t, err)

		assert.Len(t, result.Records, 6)
		// Two full pages plus the empty terminator
		assert.Equal(t, 3, result.Pages)
		assert.False(t, result.Truncated)
		assert.Equal(t, []int{250, 250, 250}, provider.gotLimits)
	})

	t.Run("caps an endless catalog and flags truncation", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopware, pageSize: 2, endless: true}
		service := NewExportService(provider, 250, 4, nil)

		result, err := service.Export(context.Background())
		require.NoError(t, err)

		assert.Len(t, result.Records, 8)
		assert.Equal(t, 4, result.Pages)
		assert.True(t, result.Truncated)
	})

	t.Run("propagates provider errors", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopify, listErr: errors.New("upstream down")}
		service := NewExportService(provider, 250, 10, nil)

		_, err := service.Export(context.Background())
		assert.Error(t, err)
	})

	t.Run("record shape", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopify, pageSize: 1, pages: 1}
		service := NewExportService(provider, 250, 10, nil)

		result, err := service.Export(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, result.Records)

		record := result.Records[0]
		assert.Equal(t, "SKU-1-0", record.SKU)
		assert.Equal(t, "Alpine Tent", record.Title)
		assert.Equal(t, 199.99, record.Price)
		assert.Equal(t, "in_stock", record.StockStatus)
		// Collections are always present, never null
		assert.NotNil(t, record.Tags)
		assert.NotNil(t, record.Specs)
	})
}

func TestExportService_Stats(t *testing.T) {
	t.Run("available with sample", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopify, pageSize: 1, pages: 1}
		service := NewExportService(provider, 250, 10, nil)

		stats, err := service.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "available", stats.Status)
		assert.Equal(t, "shopify", stats.Provider)
		require.NotNil(t, stats.SampleProduct)
		assert.Equal(t, "SKU-1-0", stats.SampleProduct.SKU)
		assert.Equal(t, []int{1}, provider.gotLimits)
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		provider := &pagingProvider{code: commerce.ProviderShopify, listErr: errors.New("upstream down")}
		service := NewExportService(provider, 250, 10, nil)

		_, err := service.Stats(context.Background())
		assert.Error(t, err)
	})
}

func TestNewExportService_Defaults(t *testing.T) {
	provider := &pagingProvider{code: commerce.ProviderShopify}
	service := NewExportService(provider, 0, 0, nil)
	assert.Equal(t, defaultPageLimit, service.pageLimit)
	assert.Equal(t, defaultMaxPages, service.maxPages)
}
