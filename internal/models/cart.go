package models

// Cart vit dans Redis (clé "cart:<user_id>"), un panier par utilisateur.
// Le prix unitaire est figé au moment de l'ajout au panier, pas au checkout.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // prix unitaire figé à l'ajout
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// TotalPrice recalcule le total à chaque lecture, jamais mis en cache
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Item retourne l'item du panier pour un produit, ou nil
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
