package models

import "time"

// Statuts d'une commande
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order est un instantané immuable : montants et prix unitaires sont
// figés à la création et ne bougent plus, même si les produits changent.
type Order struct {
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`

	Subtotal          float64 `json:"subtotal"`
	ShippingCost      float64 `json:"shipping_cost"`
	Tax               float64 `json:"tax"`
	Total             float64 `json:"total"`
	TotalCarbonOffset float64 `json:"total_carbon_offset"` // kg CO2, somme sur les items

	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingCountry string `json:"shipping_country"`

	Status          string      `json:"status"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // copie du prix unitaire, pas une référence
}

// ShippingInfo est l'adresse validée fournie au checkout
type ShippingInfo struct {
	Address string `json:"shipping_address" binding:"required"`
	City    string `json:"shipping_city" binding:"required"`
	State   string `json:"shipping_state"`
	Zip     string `json:"shipping_zip" binding:"required"`
	Country string `json:"shipping_country" binding:"required"`
}
