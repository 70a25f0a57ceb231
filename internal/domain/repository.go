package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("temporarily unavailable")
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetOrCreateByEmail(ctx context.Context, email string) (*User, error)
}

type GameRepository interface {
	// UpsertPrice inserts or refreshes the stored row for a title and stamps
	// last_updated.
	UpsertPrice(ctx context.Context, price GamePrice) error
	Get(ctx context.Context, ref GameRef) (*GamePrice, error)
}

type AlertRepository interface {
	// Upsert creates the alert or, on a (user, game, alert type) conflict,
	// applies the new target and reactivates the row clearing triggered_at.
	Upsert(ctx context.Context, alert *PriceAlert) error
	ListActiveByEmail(ctx context.Context, email string) ([]PriceAlert, error)
	ListForEvaluation(ctx context.Context) ([]EvalAlert, error)
	// MarkTriggered deactivates an alert and stamps triggered_at; it only
	// touches rows that are still active.
	MarkTriggered(ctx context.Context, alertID uint, at time.Time) error
	// Deactivate returns ErrNotFound when the user has no active alert for
	// the title.
	Deactivate(ctx context.Context, userID uint, ref GameRef) error
}

type SubscriptionRepository interface {
	// Subscribe creates the subscription or reactivates an existing one.
	Subscribe(ctx context.Context, userID uint) error
	// ListDueDigest returns active subscriptions of active users whose
	// last_sent is null or before dayStart.
	ListDueDigest(ctx context.Context, dayStart time.Time) ([]DealsSubscription, error)
	ListActiveEmails(ctx context.Context) ([]string, error)
	MarkSent(ctx context.Context, subscriptionID uint, at time.Time) error
}

type FreeGameAlertRepository interface {
	// WasSent reports whether (namespace, offerID) is already marked sent.
	WasSent(ctx context.Context, namespace, offerID string) (bool, error)
	// MarkSent upserts the record with alert_sent=true.
	MarkSent(ctx context.Context, record FreeGameAlertRecord) error
}
