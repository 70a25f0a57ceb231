package usecase

import (
	"context"
	"fmt"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/metrics"
	"go.uber.org/zap"
)

// FreeGamesUsecase announces newly-free promotions to digest subscribers at
// most once per distinct (namespace, offer) pair.
type FreeGamesUsecase struct {
	source  domain.FreeGamesSource
	records domain.FreeGameAlertRepository
	subs    domain.SubscriptionRepository
	sender  Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewFreeGamesUsecase(
	source domain.FreeGamesSource,
	records domain.FreeGameAlertRepository,
	subs domain.SubscriptionRepository,
	sender Sender,
	logger *zap.Logger,
	m *metrics.Metrics,
) *FreeGamesUsecase {
	return &FreeGamesUsecase{
		source:  source,
		records: records,
		subs:    subs,
		sender:  sender,
		logger:  logger,
		metrics: m,
	}
}

// Run fetches the current promotions, drops every one already announced, and
// mails the rest to all active subscribers in a single message. Promotions
// are marked sent as soon as at least one delivery succeeded (or nobody is
// subscribed); partial delivery failure does not unmark them. Only when
// every single send fails do the records stay unmarked, so the next run
// retries the whole announcement.
func (u *FreeGamesUsecase) Run(ctx context.Context) error {
	current, upcoming, err := u.source.FreeGames(ctx)
	if err != nil {
		return err
	}

	fresh := make([]domain.FreeGame, 0, len(current))
	seen := make(map[string]struct{})
	for _, game := range current {
		key := game.Namespace + "/" + game.OfferID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		sent, err := u.records.WasSent(ctx, game.Namespace, game.OfferID)
		if err != nil {
			u.logger.Warn("free game dedup check failed", zap.String("offer", key), zap.Error(err))
			continue
		}
		if sent {
			continue
		}
		fresh = append(fresh, game)
	}

	if len(fresh) == 0 {
		u.logger.Info("no new free games", zap.Int("current", len(current)))
		return nil
	}

	emails, err := u.subs.ListActiveEmails(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	if len(emails) > 0 {
		subject, body := renderFreeGamesEmail(fresh, upcoming)
		delivered := 0
		for _, email := range emails {
			if err := u.sender.Send(ctx, email, subject, body); err != nil {
				u.logger.Warn("free game notification failed", zap.String("email", email), zap.Error(err))
				u.metrics.IncEmailFailed("free_games")
				continue
			}
			u.metrics.IncEmailSent("free_games")
			delivered++
		}
		if delivered == 0 {
			return fmt.Errorf("free game announcement: all %d sends failed", len(emails))
		}
		u.logger.Info(
			"free games announced",
			zap.Int("games", len(fresh)),
			zap.Int("delivered", delivered),
			zap.Int("subscribers", len(emails)),
		)
	}

	for _, game := range fresh {
		record := domain.FreeGameAlertRecord{
			Namespace: game.Namespace,
			OfferID:   game.OfferID,
			Title:     game.Title,
			StartDate: game.StartDate,
			EndDate:   game.EndDate,
		}
		if err := u.records.MarkSent(ctx, record); err != nil {
			u.logger.Error(
				"failed to mark free game sent",
				zap.String("offer", game.Namespace+"/"+game.OfferID),
				zap.Error(err),
			)
		}
	}
	return nil
}
