package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	// AlertBelowTarget fires when the current price reaches the user's target.
	AlertBelowTarget AlertType = "below_target"
	// AlertBelowCurrent fires on any drop below the last stored price.
	AlertBelowCurrent AlertType = "below_current"
)

func ParseAlertType(raw string) (AlertType, error) {
	switch AlertType(strings.TrimSpace(raw)) {
	case "":
		return AlertBelowTarget, nil
	case AlertBelowTarget:
		return AlertBelowTarget, nil
	case AlertBelowCurrent:
		return AlertBelowCurrent, nil
	default:
		return "", fmt.Errorf("%w: unknown alert type %q", ErrInvalidInput, raw)
	}
}

// PriceAlert is one user's alert on one title. At most one row exists per
// (user, game, alert type); a repeated setup reactivates the row in place.
type PriceAlert struct {
	ID          uint
	UserID      uint
	GameRef     GameRef
	TargetPrice decimal.Decimal
	AlertType   AlertType
	IsActive    bool
	CreatedAt   time.Time
	TriggeredAt *time.Time

	// Joined from the games table for display and evaluation.
	Title          string
	LastKnownPrice decimal.Decimal
	Currency       string
}

// EvalAlert is one row of an evaluation sweep: an active alert joined with its
// stored game row and the owner's email. LastKnownPrice is the price recorded
// before this sweep touches it.
type EvalAlert struct {
	AlertID        uint
	Email          string
	GameRef        GameRef
	Title          string
	TargetPrice    decimal.Decimal
	LastKnownPrice decimal.Decimal
	AlertType      AlertType
}

type DealsSubscription struct {
	ID       uint
	UserID   uint
	Email    string
	IsActive bool
	LastSent *time.Time
}

// FreeGameAlertRecord marks a free-game promotion as already announced.
type FreeGameAlertRecord struct {
	ID        uint
	Namespace string
	OfferID   string
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
	AlertSent bool
}
