package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpillai/dealwatch/internal/domain"
	"go.uber.org/zap"
)

type GameUsecase struct {
	source domain.PriceSource
	games  domain.GameRepository
	logger *zap.Logger
}

func NewGameUsecase(source domain.PriceSource, games domain.GameRepository, logger *zap.Logger) *GameUsecase {
	return &GameUsecase{source: source, games: games, logger: logger}
}

func (u *GameUsecase) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	return u.source.Search(ctx, query)
}

// GetDetails looks up the live store price and refreshes the stored game row
// on the way out, so alert evaluation and listings see the latest price.
func (u *GameUsecase) GetDetails(ctx context.Context, rawRef string) (*domain.GamePrice, error) {
	ref, err := domain.ParseGameRef(rawRef)
	if err != nil {
		return nil, err
	}

	price, err := u.source.GetPrice(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := u.games.UpsertPrice(ctx, *price); err != nil {
		u.logger.Warn("failed to refresh stored price", zap.String("game_ref", price.Ref.String()), zap.Error(err))
	}
	return price, nil
}
