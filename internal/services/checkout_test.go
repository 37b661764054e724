package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderTotals(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p1 := seedProduct(t, mem, "Composteur", 10.00, 10)
	p2 := seedProduct(t, mem, "Arrosoir", 5.00, 10)

	_, err := reg.Cart.AddItem(ctx, "user-1", p1.ID)
	require.NoError(t, err)
	_, err = reg.Cart.SetQuantity(ctx, "user-1", p1.ID, 2)
	require.NoError(t, err)
	_, err = reg.Cart.AddItem(ctx, "user-1", p2.ID)
	require.NoError(t, err)

	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	// 2×10.00 + 1×5.00, port fixe 10.00, TVA 8 %
	assert.Equal(t, 25.00, order.Subtotal)
	assert.Equal(t, 10.00, order.ShippingCost)
	assert.Equal(t, 2.00, order.Tax)
	assert.Equal(t, 37.00, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ECO-"))
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	reg, mem := newTestRegistry(t)
	seedUser(t, mem, "user-1", models.RoleConsumer)

	_, err := reg.Checkout.PlaceOrder(context.Background(), "user-1", addShipping())
	assert.ErrorIs(t, err, store.ErrEmptyCart)
}

func TestPlaceOrderClearsCartAndDecrementsStock(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Récupérateur d'eau", 45.00, 8)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 3)
	require.NoError(t, err)

	_, err = reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	cart, err := reg.Cart.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	after, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestPlaceOrderAccumulatesCarbonOffset(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Vélo Cargo", 1200.00, 2) // 2.5 kg CO2 par unité

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 2)
	require.NoError(t, err)

	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)
	assert.Equal(t, 5.0, order.TotalCarbonOffset)

	u, err := mem.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, u.CarbonOffset)
}

func TestOrderPricesAreFrozen(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Poêle Fonte", 60.00, 5)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	// Changement de prix après coup : la commande ne bouge pas
	p.Price = 90.00
	require.NoError(t, mem.UpdateProduct(ctx, p))

	stored, err := mem.GetOrder(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, 60.00, stored.Items[0].Price)
	assert.Equal(t, order.Total, stored.Total)
}

func TestPlaceOrderOutOfStockReleasesReservations(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	ok := seedProduct(t, mem, "Disponible", 10.00, 5)
	scarce := seedProduct(t, mem, "Convoité", 20.00, 1)

	_, err := reg.Cart.AddItem(ctx, "user-1", ok.ID)
	require.NoError(t, err)
	_, err = reg.Cart.AddItem(ctx, "user-1", scarce.ID)
	require.NoError(t, err)

	// Quelqu'un d'autre rafle la dernière unité avant le checkout
	require.NoError(t, mem.DecrementStock(ctx, scarce.ID, 1))

	_, err = reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	assert.ErrorIs(t, err, store.ErrOutOfStock)

	// La réservation sur le premier produit a été rendue
	after, err := mem.GetProduct(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)

	// Le panier n'a pas été vidé
	cart, err := reg.Cart.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestConcurrentCheckoutSingleUnit(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Dernière Pièce", 30.00, 1)

	const buyers = 8
	for i := 0; i < buyers; i++ {
		id := string(rune('a' + i))
		seedUser(t, mem, "buyer-"+id, models.RoleConsumer)
		_, err := reg.Cart.AddItem(ctx, "buyer-"+id, p.ID)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		id := string(rune('a' + i))
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := reg.Checkout.PlaceOrder(ctx, userID, addShipping())
			results <- err
		}("buyer-" + id)
	}
	wg.Wait()
	close(results)

	var succeeded, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case strings.Contains(err.Error(), store.ErrOutOfStock.Error()):
			outOfStock++
		default:
			t.Fatalf("erreur inattendue: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactement un acheteur doit gagner")
	assert.Equal(t, buyers-1, outOfStock)

	after, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock, "jamais de stock négatif")
}

func TestPlaceOrderRecordsSaleMovementAndAlert(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Batterie Solaire", 250.00, 1)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	alerts, err := mem.ListOpenStockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "out_of_stock", alerts[0].AlertType)
	assert.Equal(t, p.ID, alerts[0].ProductID)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Tente Recyclée", 80.00, 4)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 2)
	require.NoError(t, err)

	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	cancelled, err := reg.Checkout.CancelOrder(ctx, "user-1", models.RoleConsumer, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	after, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.Stock)

	// Annuler deux fois est sans effet
	again, err := reg.Checkout.CancelOrder(ctx, "user-1", models.RoleConsumer, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
	after, err = mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.Stock)
}

func TestCancelOrderRequiresOwnerOrAdmin(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	seedUser(t, mem, "admin-1", models.RoleAdmin)
	p := seedProduct(t, mem, "Lampe Dynamo", 15.00, 3)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	_, err = reg.Checkout.CancelOrder(ctx, "user-2", models.RoleConsumer, order.OrderNumber)
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	_, err = reg.Checkout.CancelOrder(ctx, "admin-1", models.RoleAdmin, order.OrderNumber)
	assert.NoError(t, err)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Filtre à Eau", 35.00, 3)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	applied, err := mem.TransitionOrderStatus(ctx, order.OrderNumber, models.OrderStatusPending, models.OrderStatusShipped)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = reg.Checkout.CancelOrder(ctx, "user-1", models.RoleConsumer, order.OrderNumber)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestConcurrentCancelRestoresStockOnce(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Panneau Solaire", 250.00, 5)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 2)
	require.NoError(t, err)
	order, err := reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	before, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, before.Stock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := reg.Checkout.CancelOrder(ctx, "user-1", models.RoleConsumer, order.OrderNumber)
			assert.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, out.Status)
		}()
	}
	wg.Wait()

	// Huit annulations en course : un seul gagnant de la transition,
	// donc une seule restitution des 2 unités réservées
	after, err := mem.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestOrderNumberFormat(t *testing.T) {
	n := generateOrderNumber()
	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ECO", parts[0])
	assert.Equal(t, time.Now().Format("20060102"), parts[1])
	assert.Len(t, parts[2], 8)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}
