package services

import (
	"context"
	"testing"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartGetIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	first, err := reg.Cart.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, first.Items)

	second, err := reg.Cart.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCartAddItem(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Gourde Inox", 19.90, 5)

	cart, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 19.90, cart.Items[0].Price)

	// Deuxième ajout du même produit : quantité +1, pas de doublon
	cart, err = reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 39.80, cart.TotalPrice())
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Cart.AddItem(context.Background(), "user-1", gocql.TimeUUID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartAddItemInactiveProduct(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Produit Retiré", 10.00, 5)
	p.IsActive = false
	require.NoError(t, mem.UpdateProduct(ctx, p))

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartAddItemOutOfStock(t *testing.T) {
	reg, mem := newTestRegistry(t)
	p := seedProduct(t, mem, "Épuisé", 10.00, 0)

	_, err := reg.Cart.AddItem(context.Background(), "user-1", p.ID)
	assert.ErrorIs(t, err, store.ErrOutOfStock)
}

func TestCartAddItemStockCeiling(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Rare", 10.00, 2)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	// Troisième ajout refusé : le panier dépasse le stock. Le panier reste
	// en l'état, l'appelant présente ça comme un avertissement.
	cart, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, store.ErrQuantityExceedsStock)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartPriceSnapshotAtAdd(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Panneau Solaire", 100.00, 5)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	// Le vendeur augmente son prix après l'ajout
	p.Price = 150.00
	require.NoError(t, mem.UpdateProduct(ctx, p))

	cart, err := reg.Cart.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.00, cart.Items[0].Price)
}

func TestCartAddItemUsesDiscountedPrice(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	discounted := 79.99
	p := models.Product{
		ID:              gocql.TimeUUID(),
		Name:            "Chauffe-eau A+",
		Price:           99.99,
		DiscountedPrice: &discounted,
		Stock:           3,
		IsActive:        true,
	}
	require.NoError(t, mem.CreateProduct(ctx, p))

	cart, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 79.99, cart.Items[0].Price)
}

func TestCartSetQuantity(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Ampoule LED", 5.00, 10)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	cart, err := reg.Cart.SetQuantity(ctx, "user-1", p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 0)
	assert.ErrorIs(t, err, store.ErrInvalidQuantity)

	_, err = reg.Cart.SetQuantity(ctx, "user-1", p.ID, 11)
	assert.ErrorIs(t, err, store.ErrQuantityExceedsStock)

	_, err = reg.Cart.SetQuantity(ctx, "user-1", gocql.TimeUUID(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartRemoveItem(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p1 := seedProduct(t, mem, "Savon", 3.50, 10)
	p2 := seedProduct(t, mem, "Brosse Bambou", 4.50, 10)

	_, err := reg.Cart.AddItem(ctx, "user-1", p1.ID)
	require.NoError(t, err)
	_, err = reg.Cart.AddItem(ctx, "user-1", p2.ID)
	require.NoError(t, err)

	cart, err := reg.Cart.RemoveItem(ctx, "user-1", p1.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, p2.ID.String(), cart.Items[0].ProductID)

	// Retirer un produit absent n'est pas une erreur
	cart, err = reg.Cart.RemoveItem(ctx, "user-1", p1.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}
