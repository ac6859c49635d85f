package ecommerce

// Shopify REST Admin API response types.
// https://shopify.dev/docs/api/admin-rest/2024-01/resources/product

// ShopifyProduct is a product as returned by the Admin API
type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Handle      string           `json:"handle"`
	ProductType string           `json:"product_type"`
	Vendor      string           `json:"vendor"`
	Tags        string           `json:"tags"`
	Variants    []ShopifyVariant `json:"variants"`
	Images      []ShopifyImage   `json:"images"`
	Options     []ShopifyOption  `json:"options"`
}

// ShopifyVariant is a product variant
type ShopifyVariant struct {
	ID                int64   `json:"id"`
	SKU               string  `json:"sku"`
	Price             string  `json:"price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Weight            float64 `json:"weight"`
	WeightUnit        string  `json:"weight_unit"`
	Barcode           string  `json:"barcode"`
}

// ShopifyImage is a product image
type ShopifyImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// ShopifyOption is a product option such as Size or Material
type ShopifyOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ShopifyProductListResponse is the envelope of GET /products.json
type ShopifyProductListResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyProductResponse is the envelope of GET /products/{id}.json
type ShopifyProductResponse struct {
	Product *ShopifyProduct `json:"product"`
}

// ---------------------------------------------------------------------------
// Assistant-held cart types
// ---------------------------------------------------------------------------

// Shopify deployments keep cart state in the assistant service; the adapter
// talks to its /assistant/cart API and normalizes these shapes.

// AssistantCartItem is a line item as reported by the assistant cart
type AssistantCartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	ImageURL   string  `json:"image_url"`
}

// AssistantCart is the assistant's cart shape
type AssistantCart struct {
	ID        string              `json:"id"`
	Items     []AssistantCartItem `json:"items"`
	ItemCount int                 `json:"item_count"`
	Total     float64             `json:"total"`
	Currency  string              `json:"currency"`
}

// AssistantCartResponse is the envelope returned by the assistant cart API
type AssistantCartResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Cart    *AssistantCart `json:"cart"`
}
