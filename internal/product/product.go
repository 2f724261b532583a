package product

// Product maps to the `products` table. Quantity is the stock count and is
// never allowed to go negative; checkout decrements it with a conditional
// update and refunds add it back.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"productName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}
