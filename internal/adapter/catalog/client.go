package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var _ domainErrors.Retryable = TooManyRequestsError{}

// TooManyRequestsError represents rate limiting signal from the catalog service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e TooManyRequestsError) Unwrap() error {
	return domainErrors.ErrUnavailable
}

// RetryDelay reports the catalog's Retry-After hint.
func (e TooManyRequestsError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// HTTPClient looks up variant offers over the catalog HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// offer mirrors one element of the catalog's variants payload.
type offer struct {
	VariantID       int64                    `json:"variant_id"`
	ProductID       int64                    `json:"product_id"`
	CategoryID      int64                    `json:"category_id"`
	BrandID         int64                    `json:"brand_id"`
	Price           decimal.Decimal          `json:"price"`
	DiscountedPrice decimal.NullDecimal      `json:"discounted_price"`
	Name            string                   `json:"name"`
	SKU             string                   `json:"sku"`
	ImageURL        string                   `json:"image_url"`
	Attributes      []model.VariantAttribute `json:"attributes"`
}

// NewHTTPClient creates HTTP catalog client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("catalog url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Offers returns the current offers of variantIDs keyed by variant. Variants
// unknown to the catalog are absent from the result.
func (c *HTTPClient) Offers(ctx context.Context, variantIDs []int64) (map[int64]model.VariantOffer, error) {
	result := make(map[int64]model.VariantOffer, len(variantIDs))
	if len(variantIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(variantIDs))
	for _, id := range variantIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/variants")
	endpoint.RawQuery = url.Values{"ids": []string{strings.Join(ids, ",")}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data []offer
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("decode catalog offers: %w", err)
		}
		for _, o := range data {
			result[o.VariantID] = o.toModel()
		}
		return result, nil
	case http.StatusNoContent, http.StatusNotFound:
		return result, nil
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Warn("catalog rate limited", slog.Duration("retry_after", retryAfter))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("catalog request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("catalog error: %s", resp.Status)
	}
}

func (o offer) toModel() model.VariantOffer {
	return model.VariantOffer{
		VariantID:       o.VariantID,
		ProductID:       o.ProductID,
		CategoryID:      o.CategoryID,
		BrandID:         o.BrandID,
		Price:           o.Price,
		DiscountedPrice: o.DiscountedPrice,
		Snapshot: model.VariantSnapshot{
			Name:       o.Name,
			SKU:        o.SKU,
			ImageURL:   o.ImageURL,
			Attributes: o.Attributes,
		},
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
