package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Platform string

const (
	PlatformSteam Platform = "steam"
	PlatformEpic  Platform = "epic"
)

// GameRef names a purchasable title: a storefront plus its store-specific id.
type GameRef struct {
	Platform Platform
	ID       string
}

func NewGameRef(platform Platform, id string) GameRef {
	return GameRef{Platform: platform, ID: id}
}

// ParseGameRef accepts "platform:id" or a bare id, which is taken as a Steam
// app id.
func ParseGameRef(raw string) (GameRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GameRef{}, fmt.Errorf("%w: empty game id", ErrInvalidInput)
	}

	platform := PlatformSteam
	id := raw
	if before, after, ok := strings.Cut(raw, ":"); ok {
		platform = Platform(strings.ToLower(strings.TrimSpace(before)))
		id = strings.TrimSpace(after)
	}

	switch platform {
	case PlatformSteam, PlatformEpic:
	default:
		return GameRef{}, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, platform)
	}
	if id == "" {
		return GameRef{}, fmt.Errorf("%w: empty game id", ErrInvalidInput)
	}

	return GameRef{Platform: platform, ID: id}, nil
}

func (r GameRef) String() string {
	return string(r.Platform) + ":" + r.ID
}

func (r GameRef) IsZero() bool {
	return r.Platform == "" && r.ID == ""
}

func (r GameRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *GameRef) UnmarshalText(text []byte) error {
	ref, err := ParseGameRef(string(text))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// GamePrice is a title's pricing as of one Store Price Source lookup. A
// DiscountPercent above zero implies OriginalPrice is greater than
// CurrentPrice; outside a promotion both prices are equal.
type GamePrice struct {
	Ref             GameRef         `json:"game_ref"`
	Title           string          `json:"title"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent int             `json:"discount_percent"`
	Currency        string          `json:"currency"`
}

type SearchResult struct {
	Ref      GameRef
	Title    string
	Price    decimal.Decimal
	Currency string
}

// FreeGame is a time-limited free promotion on a storefront. Namespace plus
// OfferID identify the promotion for deduplication.
type FreeGame struct {
	Namespace string
	OfferID   string
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
}

type PriceSource interface {
	GetPrice(ctx context.Context, ref GameRef) (*GamePrice, error)
	FeaturedRefs(ctx context.Context) ([]GameRef, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

type FreeGamesSource interface {
	FreeGames(ctx context.Context) (current []FreeGame, upcoming []FreeGame, err error)
}
