package domain

type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Images        []string `json:"images"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Stock         int      `json:"stock"`
	Seller        string   `json:"seller"`
	SellerID      string   `json:"sellerId"`
	Featured      bool     `json:"featured,omitempty"`
	Badge         string   `json:"badge,omitempty"`
}

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
)

// Filters narrows a product listing. Zero values mean "no constraint";
// the category "All" is the same as no category.
type Filters struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating float64
	Search    string
	Featured  bool
	SortBy    SortOrder
}
