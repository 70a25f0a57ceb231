package steam

type appDetailsEntry struct {
	Success bool           `json:"success"`
	Data    appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name          string         `json:"name"`
	IsFree        bool           `json:"is_free"`
	PriceOverview *priceOverview `json:"price_overview"`
}

// priceOverview carries store prices in minor currency units (paise for INR).
type priceOverview struct {
	Currency        string `json:"currency"`
	Initial         int64  `json:"initial"`
	Final           int64  `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
}

type featuredResponse struct {
	LargeCapsules []featuredItem `json:"large_capsules"`
	FeaturedWin   []featuredItem `json:"featured_win"`
	Specials      []featuredItem `json:"specials"`
}

type featuredItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type storeSearchResponse struct {
	Total int               `json:"total"`
	Items []storeSearchItem `json:"items"`
}

type storeSearchItem struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Price *storeSearchPrice `json:"price"`
}

type storeSearchPrice struct {
	Currency string `json:"currency"`
	Initial  int64  `json:"initial"`
	Final    int64  `json:"final"`
}
