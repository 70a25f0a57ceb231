package usecase

import (
	"context"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/metrics"
	"go.uber.org/zap"
)

// Evaluator runs the price-alert sweep: one pass over every active alert,
// one store lookup per alert, at most one notification per trigger.
type Evaluator struct {
	alerts  domain.AlertRepository
	games   domain.GameRepository
	source  domain.PriceSource
	sender  Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
	delay   time.Duration
	now     func() time.Time
}

func NewEvaluator(
	alerts domain.AlertRepository,
	games domain.GameRepository,
	source domain.PriceSource,
	sender Sender,
	delay time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Evaluator {
	return &Evaluator{
		alerts:  alerts,
		games:   games,
		source:  source,
		sender:  sender,
		logger:  logger,
		metrics: m,
		delay:   delay,
		now:     time.Now,
	}
}

// EvaluateAll sweeps all active alerts sequentially with a fixed delay
// between store lookups. Per-alert failures are logged and skipped; only a
// failure to list the alerts at all fails the sweep. Nothing is retried
// within a sweep; a failed send leaves the alert active for the next one.
func (e *Evaluator) EvaluateAll(ctx context.Context) error {
	alerts, err := e.alerts.ListForEvaluation(ctx)
	if err != nil {
		return err
	}
	e.logger.Info("price sweep starting", zap.Int("alerts", len(alerts)))

	triggered := 0
	for i, alert := range alerts {
		if i > 0 {
			if err := sleepCtx(ctx, e.delay); err != nil {
				return err
			}
		}
		if e.evaluate(ctx, alert) {
			triggered++
		}
	}

	e.logger.Info("price sweep complete", zap.Int("alerts", len(alerts)), zap.Int("triggered", triggered))
	return nil
}

func (e *Evaluator) evaluate(ctx context.Context, alert domain.EvalAlert) bool {
	price, err := e.source.GetPrice(ctx, alert.GameRef)
	if err != nil {
		// Not found and unavailable are the same to a sweep: skip the
		// alert untouched and let the next cycle try again.
		e.logger.Warn(
			"price lookup failed, skipping alert",
			zap.Uint("alert_id", alert.AlertID),
			zap.String("game_ref", alert.GameRef.String()),
			zap.Error(err),
		)
		return false
	}

	// Refresh the stored price regardless of the trigger decision so
	// listings stay current between triggers.
	if err := e.games.UpsertPrice(ctx, *price); err != nil {
		e.logger.Warn("failed to refresh stored price", zap.String("game_ref", price.Ref.String()), zap.Error(err))
	}

	if !shouldTrigger(alert, price) {
		return false
	}

	subject, body := renderAlertEmail(alert, price)
	if err := e.sender.Send(ctx, alert.Email, subject, body); err != nil {
		// The alert stays active: the send is retried on the next sweep.
		e.logger.Warn(
			"alert notification failed, leaving alert active",
			zap.Uint("alert_id", alert.AlertID),
			zap.String("email", alert.Email),
			zap.Error(err),
		)
		e.metrics.IncEmailFailed("price_alert")
		return false
	}
	e.metrics.IncEmailSent("price_alert")

	if err := e.alerts.MarkTriggered(ctx, alert.AlertID, e.now().UTC()); err != nil {
		e.logger.Error("failed to mark alert triggered", zap.Uint("alert_id", alert.AlertID), zap.Error(err))
		return false
	}
	e.metrics.IncAlertTriggered()
	e.logger.Info(
		"alert triggered",
		zap.Uint("alert_id", alert.AlertID),
		zap.String("game_ref", alert.GameRef.String()),
		zap.String("price", price.CurrentPrice.String()),
	)
	return true
}

// shouldTrigger applies the alert condition: below_target compares against
// the user's target, below_current against the price stored before this
// sweep refreshed it.
func shouldTrigger(alert domain.EvalAlert, price *domain.GamePrice) bool {
	switch alert.AlertType {
	case domain.AlertBelowCurrent:
		return price.CurrentPrice.Cmp(alert.LastKnownPrice) < 0
	default:
		return price.CurrentPrice.Cmp(alert.TargetPrice) <= 0
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
