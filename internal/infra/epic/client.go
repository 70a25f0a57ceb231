package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultEndpoints lists the free-games promotion feeds in fallback order.
// The regional mirrors serve the same catalog shape, so the first one that
// answers with games wins.
func DefaultEndpoints() []string {
	return []string{
		"https://store-site-backend-static-ipv4.ak.epicgames.com/freeGamesPromotions?locale=en-US&country=IN&allowCountries=IN",
		"https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions?locale=en-US&country=IN",
		"https://store-site-backend-static-ipv4.ak.epicgames.com/freeGamesPromotions?locale=en-US&country=US&allowCountries=US",
	}
}

type Client struct {
	endpoints []string
	client    *http.Client
	logger    *zap.Logger
}

func NewClient(endpoints []string, timeout time.Duration, logger *zap.Logger) *Client {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints()
	}
	return &Client{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// FreeGames walks the endpoint list in order and returns the first non-empty
// result. Endpoints that answer but list no promotions count as a valid empty
// catalog; only when every endpoint errors does the whole call fail.
func (c *Client) FreeGames(ctx context.Context) ([]domain.FreeGame, []domain.FreeGame, error) {
	var errs []error
	answered := false

	for i, endpoint := range c.endpoints {
		current, upcoming, err := c.fetch(ctx, endpoint)
		if err != nil {
			c.logger.Warn(
				"free games endpoint failed",
				zap.Int("endpoint_index", i),
				zap.String("url", endpoint),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("endpoint %d: %w", i, err))
			continue
		}
		if len(current) > 0 || len(upcoming) > 0 {
			c.logger.Info(
				"free games fetched",
				zap.Int("endpoint_index", i),
				zap.Int("current", len(current)),
				zap.Int("upcoming", len(upcoming)),
			)
			return current, upcoming, nil
		}
		answered = true
		c.logger.Warn("free games endpoint returned no games", zap.Int("endpoint_index", i))
	}

	if answered {
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: all free games endpoints failed: %v", domain.ErrUnavailable, multierr.Combine(errs...))
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]domain.FreeGame, []domain.FreeGame, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	c.logger.Info(
		"epic request complete",
		zap.String("url", endpoint),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("epic free games: status %d", response.StatusCode)
	}

	var payload freeGamesResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, nil, err
	}

	var current, upcoming []domain.FreeGame
	for _, element := range payload.Data.Catalog.SearchStore.Elements {
		if element.Title == "" || element.Title == "Mystery Game" {
			continue
		}
		// Without both ids the promotion cannot be deduplicated, so skip it.
		if element.Namespace == "" || element.ID == "" {
			continue
		}
		if element.Promotions == nil {
			continue
		}

		current = appendFreeOffers(current, element, element.Promotions.PromotionalOffers)
		upcoming = appendFreeOffers(upcoming, element, element.Promotions.UpcomingPromotionalOffers)
	}
	return current, upcoming, nil
}

func appendFreeOffers(games []domain.FreeGame, element storeElement, groups []offerGroup) []domain.FreeGame {
	for _, group := range groups {
		for _, offer := range group.PromotionalOffers {
			if !offer.isFree() {
				continue
			}
			games = append(games, domain.FreeGame{
				Namespace: element.Namespace,
				OfferID:   element.ID,
				Title:     element.Title,
				StartDate: offer.StartDate,
				EndDate:   offer.EndDate,
			})
		}
	}
	return games
}
