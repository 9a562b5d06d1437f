package domain

// Money is an amount in minor units (cents).
type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type QuoteLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	LineTotal Money  `json:"line_total"`

	// CartPrice is the unit price captured when the product entered the cart.
	CartPrice    Money `json:"cart_price"`
	PriceChanged bool  `json:"price_changed"`
	Available    int64 `json:"available"`
	OutOfStock   bool  `json:"out_of_stock"`
}

type Quote struct {
	Lines     []QuoteLine `json:"lines"`
	Total     Money       `json:"total"`
	CartTotal Money       `json:"cart_total"`
}
