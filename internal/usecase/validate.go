package usecase

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// normalizeEmail lowercases and validates an address before it reaches any
// repository; a rejected email causes no writes.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, raw)
	}
	return email, nil
}

func validateTargetPrice(target decimal.Decimal) error {
	if target.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("%w: target price must be positive, got %s", domain.ErrInvalidInput, target)
	}
	return nil
}
