package commerce

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseProviderCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProviderCode
		wantErr error
	}{
		{name: "shopify", input: "shopify", want: ProviderShopify},
		{name: "salesforce", input: "salesforce", want: ProviderSalesforce},
		{name: "shopware", input: "shopware", want: ProviderShopware},
		{name: "case insensitive", input: "Salesforce", want: ProviderSalesforce},
		{name: "surrounding whitespace", input: "  SHOPWARE ", want: ProviderShopware},
		{name: "empty defaults to shopify", input: "", want: ProviderShopify},
		{name: "unknown", input: "magento", wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProviderCode(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestAddToCartRequest_Normalize(t *testing.T) {
	req := AddToCartRequest{ProductID: "p1"}
	req.Normalize()

	assert.Equal(t, 1, req.Quantity)
	assert.Equal(t, DefaultSessionID, req.SessionID)
	assert.Equal(t, CartActionAdd, req.Action)

	req = AddToCartRequest{ProductID: "p1", Quantity: 3, SessionID: "s1", Action: CartActionSet}
	req.Normalize()
	assert.Equal(t, 3, req.Quantity)
	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, CartActionSet, req.Action)
}

func TestAddToCartRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AddToCartRequest
		wantErr error
	}{
		{
			name: "add with product id",
			req:  AddToCartRequest{ProductID: "p1", Action: CartActionAdd},
		},
		{
			name:    "add without product id",
			req:     AddToCartRequest{Action: CartActionAdd},
			wantErr: ErrMissingProductID,
		},
		{
			name:    "implicit add without product id",
			req:     AddToCartRequest{},
			wantErr: ErrMissingProductID,
		},
		{
			name: "set with cart item id",
			req:  AddToCartRequest{CartItemID: "li1", Quantity: 2, Action: CartActionSet},
		},
		{
			name:    "set without cart item id",
			req:     AddToCartRequest{Quantity: 2, Action: CartActionSet},
			wantErr: ErrMissingCartItemID,
		},
		{
			name:    "remove without cart item id",
			req:     AddToCartRequest{Action: CartActionRemove},
			wantErr: ErrMissingCartItemID,
		},
		{
			name:    "unknown action",
			req:     AddToCartRequest{ProductID: "p1", Action: CartAction("drop")},
			wantErr: ErrInvalidCartAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCart_FindItemByProductID(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{ID: "li1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
			{ID: "li2", ProductID: "p2", Quantity: 2, UnitPrice: decimal.NewFromInt(5)},
		},
	}

	item := cart.FindItemByProductID("p2")
	assert.NotNil(t, item)
	assert.Equal(t, "li2", item.ID)

	assert.Nil(t, cart.FindItemByProductID("p9"))
}

func TestStockStatus_IsValid(t *testing.T) {
	assert.True(t, StockStatusInStock.IsValid())
	assert.True(t, StockStatusOutOfStock.IsValid())
	assert.True(t, StockStatusUnknown.IsValid())
	assert.False(t, StockStatus("backorder").IsValid())
}
