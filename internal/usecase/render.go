package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Sender delivers one plain-text message to one recipient. Implementations
// must return an error instead of panicking; a failed send never stops the
// caller's sweep.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

func formatPrice(currency string, price decimal.Decimal) string {
	if currency == "" {
		return price.StringFixed(2)
	}
	return currency + " " + price.StringFixed(2)
}

func renderAlertEmail(alert domain.EvalAlert, price *domain.GamePrice) (string, string) {
	subject := fmt.Sprintf("Price alert: %s is now %s", price.Title, formatPrice(price.Currency, price.CurrentPrice))

	var b strings.Builder
	fmt.Fprintf(&b, "Good news! %s dropped in price.\n\n", price.Title)
	fmt.Fprintf(&b, "Current price: %s\n", formatPrice(price.Currency, price.CurrentPrice))
	if price.DiscountPercent > 0 {
		fmt.Fprintf(&b, "Original price: %s (-%d%%)\n", formatPrice(price.Currency, price.OriginalPrice), price.DiscountPercent)
	}
	switch alert.AlertType {
	case domain.AlertBelowCurrent:
		fmt.Fprintf(&b, "Previous price: %s\n", formatPrice(price.Currency, alert.LastKnownPrice))
	default:
		fmt.Fprintf(&b, "Your target: %s\n", formatPrice(price.Currency, alert.TargetPrice))
	}
	fmt.Fprintf(&b, "\nStore page: https://store.steampowered.com/app/%s\n", price.Ref.ID)
	b.WriteString("\nThis alert is now off. Set a new one any time.\n")
	return subject, b.String()
}

func renderDigestEmail(deals []domain.GamePrice) (string, string) {
	subject := fmt.Sprintf("Today's game deals: %d discounts worth a look", len(deals))

	var b strings.Builder
	b.WriteString("Today's picks:\n\n")
	for i, deal := range deals {
		fmt.Fprintf(&b, "%d. %s: %s (was %s, -%d%%)\n",
			i+1,
			deal.Title,
			formatPrice(deal.Currency, deal.CurrentPrice),
			formatPrice(deal.Currency, deal.OriginalPrice),
			deal.DiscountPercent,
		)
	}
	b.WriteString("\nPrices and discounts as of the latest refresh.\n")
	return subject, b.String()
}

func renderFreeGamesEmail(fresh, upcoming []domain.FreeGame) (string, string) {
	subject := fmt.Sprintf("Free now on Epic: %s", fresh[0].Title)
	if len(fresh) > 1 {
		subject = fmt.Sprintf("Free now on Epic: %d games to claim", len(fresh))
	}

	var b strings.Builder
	b.WriteString("Claim these before they go back to full price:\n\n")
	for _, game := range fresh {
		fmt.Fprintf(&b, "- %s", game.Title)
		if game.EndDate != nil {
			fmt.Fprintf(&b, " (free until %s)", game.EndDate.Format("Jan 2"))
		}
		b.WriteString("\n")
	}
	if len(upcoming) > 0 {
		b.WriteString("\nComing up free soon:\n")
		for _, game := range upcoming {
			fmt.Fprintf(&b, "- %s", game.Title)
			if game.StartDate != nil {
				fmt.Fprintf(&b, " (from %s)", game.StartDate.Format("Jan 2"))
			}
			b.WriteString("\n")
		}
	}
	return subject, b.String()
}
