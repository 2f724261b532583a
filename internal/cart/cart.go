package cart

// Item is a product snapshot captured at the time it was added to the cart.
// Price and name are frozen here so receipts reflect price-at-purchase even
// if the catalog changes later.
type Item struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image,omitempty"`
}

// Total sums price x quantity over the items.
func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
