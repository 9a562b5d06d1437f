package domain

// Product is the denormalized snapshot of a catalog product held by a cart.
// It is copied in by value, so later catalog edits never reach an existing entry.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Images        []string `json:"images,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	ReviewCount   int      `json:"reviewCount,omitempty"`
	Stock         int      `json:"stock"`
	Seller        string   `json:"seller,omitempty"`
	SellerID      string   `json:"sellerId,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
	Badge         string   `json:"badge,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	return c
}

type Entry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Record is a cart line as persisted by the remote record service.
type Record struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	ProductID string  `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

func (r Record) Entry() Entry {
	return Entry{Product: r.Product.Clone(), Quantity: r.Quantity}
}
