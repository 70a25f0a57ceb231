package usecase

import (
	"context"
	"fmt"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
)

type AlertUsecase struct {
	users  domain.UserRepository
	alerts domain.AlertRepository
	games  domain.GameRepository
	source domain.PriceSource
}

func NewAlertUsecase(users domain.UserRepository, alerts domain.AlertRepository, games domain.GameRepository, source domain.PriceSource) *AlertUsecase {
	return &AlertUsecase{users: users, alerts: alerts, games: games, source: source}
}

// AlertConfirmation reports the alert as persisted plus the live price it was
// checked against. TargetAlreadyMet tells the caller the next sweep will fire
// immediately.
type AlertConfirmation struct {
	Alert            domain.PriceAlert
	Title            string
	CurrentPrice     decimal.Decimal
	Currency         string
	TargetAlreadyMet bool
}

// SetupAlert validates input, verifies the title exists on the store, and
// upserts the alert. Setting up the same (user, game, alert type) again
// replaces the target and reactivates the alert.
func (u *AlertUsecase) SetupAlert(ctx context.Context, rawRef, email string, targetPrice decimal.Decimal, rawType string) (*AlertConfirmation, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateTargetPrice(targetPrice); err != nil {
		return nil, err
	}
	ref, err := domain.ParseGameRef(rawRef)
	if err != nil {
		return nil, err
	}
	alertType, err := domain.ParseAlertType(rawType)
	if err != nil {
		return nil, err
	}

	// The lookup both proves the title exists and resolves id corrections;
	// the alert is stored under the ref the store actually serves.
	price, err := u.source.GetPrice(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := u.games.UpsertPrice(ctx, *price); err != nil {
		return nil, fmt.Errorf("persist game price: %w", err)
	}

	user, err := u.users.GetOrCreateByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	alert := &domain.PriceAlert{
		UserID:      user.ID,
		GameRef:     price.Ref,
		TargetPrice: targetPrice,
		AlertType:   alertType,
	}
	if err := u.alerts.Upsert(ctx, alert); err != nil {
		return nil, fmt.Errorf("upsert alert: %w", err)
	}

	return &AlertConfirmation{
		Alert:            *alert,
		Title:            price.Title,
		CurrentPrice:     price.CurrentPrice,
		Currency:         price.Currency,
		TargetAlreadyMet: price.CurrentPrice.Cmp(targetPrice) <= 0,
	}, nil
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, email string) ([]domain.PriceAlert, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if _, err := u.users.GetByEmail(ctx, normalized); err != nil {
		return nil, err
	}
	return u.alerts.ListActiveByEmail(ctx, normalized)
}

// RemoveAlert deactivates the user's alert for a title. The row stays behind
// for audit; only is_active flips.
func (u *AlertUsecase) RemoveAlert(ctx context.Context, email, rawRef string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	ref, err := domain.ParseGameRef(rawRef)
	if err != nil {
		return err
	}
	user, err := u.users.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	return u.alerts.Deactivate(ctx, user.ID, ref)
}
