package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	baseURL     string
	country     string
	client      *http.Client
	corrections Corrections
	logger      *zap.Logger
}

func NewClient(baseURL, country string, timeout time.Duration, corrections Corrections, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		country:     country,
		client:      &http.Client{Timeout: timeout},
		corrections: corrections,
		logger:      logger,
	}
}

// GetPrice looks up the store price for a Steam app. The corrections map is
// consulted before the request goes out: remapped ids are priced under their
// target id, and the returned GamePrice carries that target ref.
func (c *Client) GetPrice(ctx context.Context, ref domain.GameRef) (*domain.GamePrice, error) {
	if ref.Platform != domain.PlatformSteam {
		return nil, fmt.Errorf("%w: unsupported platform %q", domain.ErrInvalidInput, ref.Platform)
	}

	appID := ref.ID
	if target, ok := c.corrections[appID]; ok {
		if target == "" {
			return nil, fmt.Errorf("%w: app %s is delisted", domain.ErrNotFound, appID)
		}
		appID = target
	}

	endpoint := fmt.Sprintf("%s/appdetails?appids=%s&cc=%s", c.baseURL, url.QueryEscape(appID), url.QueryEscape(c.country))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info("steam appdetails start", zap.String("app_id", appID), zap.String("url", endpoint))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("steam appdetails failed", zap.String("app_id", appID), zap.Error(err))
		return nil, fmt.Errorf("%w: steam appdetails: %v", domain.ErrUnavailable, err)
	}
	defer response.Body.Close()

	c.logger.Info(
		"steam appdetails complete",
		zap.String("app_id", appID),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: steam appdetails: status %d", domain.ErrUnavailable, response.StatusCode)
	}

	var payload map[string]appDetailsEntry
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}

	entry, ok := payload[appID]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("%w: app %s", domain.ErrNotFound, appID)
	}
	if entry.Data.PriceOverview == nil {
		return nil, fmt.Errorf("%w: app %s has no price listing", domain.ErrNotFound, appID)
	}

	overview := entry.Data.PriceOverview
	return &domain.GamePrice{
		Ref:             domain.NewGameRef(domain.PlatformSteam, appID),
		Title:           entry.Data.Name,
		CurrentPrice:    decimal.New(overview.Final, -2),
		OriginalPrice:   decimal.New(overview.Initial, -2),
		DiscountPercent: overview.DiscountPercent,
		Currency:        overview.Currency,
	}, nil
}

// FeaturedRefs returns app refs currently promoted on the store front page.
// The store repeats titles across sections, so ids are deduplicated in order
// of first appearance.
func (c *Client) FeaturedRefs(ctx context.Context) ([]domain.GameRef, error) {
	endpoint := c.baseURL + "/featured/"
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info("steam featured start", zap.String("url", endpoint))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("steam featured failed", zap.Error(err))
		return nil, fmt.Errorf("%w: steam featured: %v", domain.ErrUnavailable, err)
	}
	defer response.Body.Close()

	c.logger.Info(
		"steam featured complete",
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: steam featured: status %d", domain.ErrUnavailable, response.StatusCode)
	}

	var payload featuredResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	refs := make([]domain.GameRef, 0, 40)
	appendSection := func(items []featuredItem, limit int) {
		if len(items) > limit {
			items = items[:limit]
		}
		for _, item := range items {
			if item.ID == 0 {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			refs = append(refs, domain.NewGameRef(domain.PlatformSteam, strconv.FormatInt(item.ID, 10)))
		}
	}
	appendSection(payload.LargeCapsules, 15)
	appendSection(payload.Specials, 15)
	appendSection(payload.FeaturedWin, 10)

	return refs, nil
}

// Search queries the storefront search endpoint. Results without a price
// block (free or unreleased titles) come back with a zero price.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("l", "english")
	params.Set("cc", c.country)
	endpoint := c.baseURL + "/storesearch?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info("steam search start", zap.String("query", query), zap.String("url", endpoint))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("steam search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: steam search: %v", domain.ErrUnavailable, err)
	}
	defer response.Body.Close()

	c.logger.Info(
		"steam search complete",
		zap.String("query", query),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: steam search: status %d", domain.ErrUnavailable, response.StatusCode)
	}

	var payload storeSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID == 0 || item.Name == "" {
			continue
		}
		result := domain.SearchResult{
			Ref:   domain.NewGameRef(domain.PlatformSteam, strconv.FormatInt(item.ID, 10)),
			Title: item.Name,
		}
		if item.Price != nil {
			result.Price = decimal.New(item.Price.Final, -2)
			result.Currency = item.Price.Currency
		}
		results = append(results, result)
	}
	return results, nil
}
