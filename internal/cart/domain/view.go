package domain

// View is the derived cart: never stored on its own, always rebuilt from a Ledger.
type View struct {
	Items     []Entry `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

func NewView(l Ledger) View {
	v := View{Items: l.Entries()}
	for _, e := range v.Items {
		v.Total += e.Product.Price * float64(e.Quantity)
		v.ItemCount += e.Quantity
	}
	return v
}
