package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// defaultPageLimit is the per-page size of the export loop
	defaultPageLimit = 250
	// defaultMaxPages caps the export loop; reaching it yields a partial export
	defaultMaxPages = 10
)

// ExportRecord is one canonical catalog row. The shape is the ingestion
// contract of the assistant's product index and stays identical across
// providers.
type ExportRecord struct {
	SKU         string         `json:"sku"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	ImageURL    string         `json:"image_url"`
	Vendor      string         `json:"vendor"`
	Handle      string         `json:"handle"`
	ProductURL  string         `json:"product_url"`
	Specs       map[string]any `json:"specs"`
	StockStatus string         `json:"stock_status"`
}

// ExportResult is the outcome of a full catalog export
type ExportResult struct {
	Records []ExportRecord
	// Pages is the number of pages fetched
	Pages int
	// Truncated marks an export that hit the page cap with more catalog
	// remaining
	Truncated bool
}

// StatsResult is a lightweight availability probe of the catalog
type StatsResult struct {
	Status        string        `json:"status"`
	Provider      string        `json:"provider"`
	SampleProduct *ExportRecord `json:"sample_product,omitempty"`
}

// ExportService walks the active provider's catalog and emits canonical
// records for the assistant's index
type ExportService struct {
	provider  commerce.CommerceProvider
	pageLimit int
	maxPages  int
	logger    *zap.Logger
}

// NewExportService creates a new export service. Non-positive limits fall
// back to the defaults.
func NewExportService(provider commerce.CommerceProvider, pageLimit, maxPages int, logger *zap.Logger) *ExportService {
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		provider:  provider,
		pageLimit: pageLimit,
		maxPages:  maxPages,
		logger:    logger.With(zap.String("provider", provider.Code().String())),
	}
}

// Export fetches the catalog page by page until the provider reports no
// continuation, an empty page comes back, or the page cap is reached
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	result := &ExportResult{
		Records: make([]ExportRecord, 0, s.pageLimit),
	}

	cursor := ""
	for result.Pages < s.maxPages {
		page, err := s.provider.GetAllProducts(ctx, s.pageLimit, cursor)
		if err != nil {
			return nil, err
		}
		result.Pages++

		for i := range page.Products {
			result.Records = append(result.Records, toExportRecord(&page.Products[i]))
		}

		if len(page.Products) == 0 || page.NextCursor == "" {
			return s.finish(result, false), nil
		}
		cursor = page.NextCursor
	}

	// The provider still reported a continuation when the cap was hit
	return s.finish(result, true), nil
}

func (s *ExportService) finish(result *ExportResult, truncated bool) *ExportResult {
	result.Truncated = truncated
	if truncated {
		s.logger.Warn("catalog export truncated at page cap",
			zap.Int("pages", result.Pages),
			zap.Int("records", len(result.Records)),
		)
	} else {
		s.logger.Info("catalog export complete",
			zap.Int("pages", result.Pages),
			zap.Int("records", len(result.Records)),
		)
	}
	return result
}

// Stats probes the catalog by fetching a single product
func (s *ExportService) Stats(ctx context.Context) (*StatsResult, error) {
	page, err := s.provider.GetAllProducts(ctx, 1, "")
	if err != nil {
		return nil, err
	}

	stats := &StatsResult{
		Status:   "available",
		Provider: s.provider.Code().String(),
	}
	if len(page.Products) > 0 {
		record := toExportRecord(&page.Products[0])
		stats.SampleProduct = &record
	}
	return stats, nil
}

// toExportRecord maps the domain product onto the export contract. Nil
// collections become empty ones so the JSON never carries null.
func toExportRecord(p *commerce.Product) ExportRecord {
	price, _ := p.Price.Float64()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	specs := p.Specs
	if specs == nil {
		specs = map[string]any{}
	}

	return ExportRecord{
		SKU:         p.SKU,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		Currency:    p.Currency,
		Category:    p.Category,
		Tags:        tags,
		ImageURL:    p.ImageURL,
		Vendor:      p.Vendor,
		Handle:      p.Handle,
		ProductURL:  p.ProductURL,
		Specs:       specs,
		StockStatus: p.StockStatus.String(),
	}
}
