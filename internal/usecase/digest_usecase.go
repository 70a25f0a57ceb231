package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/metrics"
	"go.uber.org/zap"
)

// DealsProvider is the deals cache as the digest sees it: current deals or
// an unavailable error, never a stale list presented as fresh.
type DealsProvider interface {
	Current(ctx context.Context) ([]domain.GamePrice, error)
}

type DigestUsecase struct {
	users   domain.UserRepository
	subs    domain.SubscriptionRepository
	deals   DealsProvider
	sender  Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDigestUsecase(
	users domain.UserRepository,
	subs domain.SubscriptionRepository,
	deals DealsProvider,
	sender Sender,
	logger *zap.Logger,
	m *metrics.Metrics,
) *DigestUsecase {
	return &DigestUsecase{
		users:   users,
		subs:    subs,
		deals:   deals,
		sender:  sender,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Subscribe registers the user if needed and activates their digest
// subscription. Subscribing twice is a no-op.
func (u *DigestUsecase) Subscribe(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := u.users.GetOrCreateByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("get or create user: %w", err)
	}
	return u.subs.Subscribe(ctx, user.ID)
}

// SendNow mails the current deals to one address immediately. It does not
// stamp last_sent; the once-per-day guard belongs to the scheduled digest
// alone.
func (u *DigestUsecase) SendNow(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	deals, err := u.deals.Current(ctx)
	if err != nil {
		return err
	}

	subject, body := renderDigestEmail(deals)
	if err := u.sender.Send(ctx, normalized, subject, body); err != nil {
		u.metrics.IncEmailFailed("digest")
		return err
	}
	u.metrics.IncEmailSent("digest")
	return nil
}

// RunDaily mails the digest to every active subscriber not yet served today
// (UTC date granularity). last_sent is stamped per subscriber only after
// their send succeeded, so a failed delivery is retried on the next run.
// An unavailable deals cache fails the whole run; it retries on schedule.
func (u *DigestUsecase) RunDaily(ctx context.Context) error {
	now := u.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	due, err := u.subs.ListDueDigest(ctx, dayStart)
	if err != nil {
		return fmt.Errorf("list due subscriptions: %w", err)
	}
	if len(due) == 0 {
		u.logger.Info("daily digest: nobody due")
		return nil
	}

	deals, err := u.deals.Current(ctx)
	if err != nil {
		return fmt.Errorf("load deals for digest: %w", err)
	}

	subject, body := renderDigestEmail(deals)
	delivered := 0
	for _, sub := range due {
		if err := u.sender.Send(ctx, sub.Email, subject, body); err != nil {
			u.logger.Warn("digest delivery failed", zap.String("email", sub.Email), zap.Error(err))
			u.metrics.IncEmailFailed("digest")
			continue
		}
		u.metrics.IncEmailSent("digest")
		if err := u.subs.MarkSent(ctx, sub.ID, now); err != nil {
			u.logger.Error("failed to stamp digest sent", zap.Uint("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		delivered++
	}

	u.logger.Info("daily digest complete", zap.Int("due", len(due)), zap.Int("delivered", delivered))
	return nil
}
