package epic

import "time"

type freeGamesResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []storeElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type storeElement struct {
	Title      string      `json:"title"`
	ID         string      `json:"id"`
	Namespace  string      `json:"namespace"`
	Promotions *promotions `json:"promotions"`
}

type promotions struct {
	PromotionalOffers         []offerGroup `json:"promotionalOffers"`
	UpcomingPromotionalOffers []offerGroup `json:"upcomingPromotionalOffers"`
}

type offerGroup struct {
	PromotionalOffers []promotionalOffer `json:"promotionalOffers"`
}

type promotionalOffer struct {
	StartDate       *time.Time      `json:"startDate"`
	EndDate         *time.Time      `json:"endDate"`
	DiscountSetting discountSetting `json:"discountSetting"`
}

// DiscountPercentage zero means the remaining price is zero, so the offer is
// fully free. A missing field decodes to nil and is not a free offer.
type discountSetting struct {
	DiscountType       string `json:"discountType"`
	DiscountPercentage *int   `json:"discountPercentage"`
}

func (o promotionalOffer) isFree() bool {
	return o.DiscountSetting.DiscountPercentage != nil && *o.DiscountSetting.DiscountPercentage == 0
}
