package services

import (
	"math"

	"ecohub_back_end/internal/store"
)

// Registry regroupe les services métier, câblés sur un même Store.
// Initialisé une fois au démarrage (services.Init), consommé par les handlers.
type Registry struct {
	Store    store.Store
	Cart     *CartService
	Checkout *CheckoutService
	Reviews  *ReviewService
	Vendors  *VendorService
	Catalog  *CatalogService
}

var Default *Registry

func Init(st store.Store) *Registry {
	Default = &Registry{
		Store:    st,
		Cart:     NewCartService(st),
		Checkout: NewCheckoutService(st),
		Reviews:  NewReviewService(st),
		Vendors:  NewVendorService(st),
		Catalog:  NewCatalogService(st),
	}
	return Default
}

// round2 arrondit au centime : tous les montants stockés passent par là
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
