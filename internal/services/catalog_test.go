package services

import (
	"context"
	"testing"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productInput(name string, price float64, categoryID string) ProductInput {
	return ProductInput{
		Name:                   name,
		Description:            "Un produit sobre et durable",
		CategoryID:             categoryID,
		Price:                  price,
		Stock:                  10,
		EnergyEfficiencyRating: "A+",
		CarbonFootprint:        1.2,
		Certifications:         models.CertEnergyStar,
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "lampe-solaire-20w", slugify("Lampe Solaire 20W"))
	assert.Equal(t, "four-combine", slugify("Four  Combiné!!"))
	assert.Equal(t, "abc", slugify("--abc--"))
}

func TestCreateProductRequiresVerifiedVendor(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Énergie", "", "", nil)
	require.NoError(t, err)

	// Pas de profil vendeur
	_, err = reg.Catalog.CreateProduct(ctx, "user-1", productInput("Onduleur", 300, cat.ID.String()))
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	// Vendeur en attente de vérification
	_, err = reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)
	_, err = reg.Catalog.CreateProduct(ctx, "user-1", productInput("Onduleur", 300, cat.ID.String()))
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestCreateProductAsVerifiedVendor(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	vendor := seedVerifiedVendor(t, mem, "user-1")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Énergie", "", "", nil)
	require.NoError(t, err)

	p, err := reg.Catalog.CreateProduct(ctx, "user-1", productInput("Onduleur Hybride", 300, cat.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, p.VendorID)
	assert.Equal(t, "onduleur-hybride", p.Slug)
	assert.True(t, p.IsActive)
	assert.Equal(t, 10, p.Stock)
}

func TestUpdateProductOwnershipEnforced(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedVerifiedVendor(t, mem, "user-1")
	seedVerifiedVendor(t, mem, "user-2")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Maison", "", "", nil)
	require.NoError(t, err)

	p, err := reg.Catalog.CreateProduct(ctx, "user-1", productInput("Isolant Liège", 50, cat.ID.String()))
	require.NoError(t, err)

	_, err = reg.Catalog.UpdateProduct(ctx, "user-2", p.ID, productInput("Détourné", 1, cat.ID.String()))
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	updated, err := reg.Catalog.UpdateProduct(ctx, "user-1", p.ID, productInput("Isolant Liège Expansé", 55, cat.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, 55.00, updated.Price)
	assert.Equal(t, "isolant-liege-expanse", updated.Slug)
}

func TestDeactivateProductHidesFromCatalog(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedVerifiedVendor(t, mem, "user-1")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Jardin", "", "", nil)
	require.NoError(t, err)

	p, err := reg.Catalog.CreateProduct(ctx, "user-1", productInput("Serre Compacte", 150, cat.ID.String()))
	require.NoError(t, err)

	require.NoError(t, reg.Catalog.DeactivateProduct(ctx, "user-1", models.RoleVendor, p.ID))

	_, err = reg.Catalog.Get(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := reg.Catalog.List(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListProductsFilters(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedVerifiedVendor(t, mem, "user-1")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Cuisine", "", "", nil)
	require.NoError(t, err)

	in := productInput("Plaque Induction", 450, cat.ID.String())
	_, err = reg.Catalog.CreateProduct(ctx, "user-1", in)
	require.NoError(t, err)

	in = productInput("Hotte Silencieuse", 250, cat.ID.String())
	in.EnergyEfficiencyRating = "B"
	_, err = reg.Catalog.CreateProduct(ctx, "user-1", in)
	require.NoError(t, err)

	byRating, err := reg.Catalog.List(ctx, store.ProductFilter{EnergyRating: "A+"})
	require.NoError(t, err)
	require.Len(t, byRating, 1)
	assert.Equal(t, "Plaque Induction", byRating[0].Name)

	bySearch, err := reg.Catalog.List(ctx, store.ProductFilter{Search: "hotte"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	byCategory, err := reg.Catalog.List(ctx, store.ProductFilter{CategorySlug: "cuisine"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)
}

func TestRestock(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedVerifiedVendor(t, mem, "user-1")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Atelier", "", "", nil)
	require.NoError(t, err)

	in := productInput("Perceuse Filaire", 80, cat.ID.String())
	in.Stock = 2
	in.LowStockThreshold = 3
	p, err := reg.Catalog.CreateProduct(ctx, "user-1", in)
	require.NoError(t, err)

	updated, err := reg.Catalog.Restock(ctx, "user-1", models.RoleVendor, p.ID, 10, "livraison fournisseur")
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)

	_, err = reg.Catalog.Restock(ctx, "user-1", models.RoleVendor, p.ID, 0, "")
	assert.ErrorIs(t, err, store.ErrInvalidQuantity)
}

func TestRestockResolvesOpenAlerts(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "buyer-1", models.RoleConsumer)
	seedVerifiedVendor(t, mem, "user-1")
	cat, err := reg.Catalog.CreateCategory(ctx, models.RoleAdmin, "Mobilité", "", "", nil)
	require.NoError(t, err)

	in := productInput("Trottinette", 350, cat.ID.String())
	in.Stock = 1
	p, err := reg.Catalog.CreateProduct(ctx, "user-1", in)
	require.NoError(t, err)

	// La vente de la dernière unité ouvre une alerte de rupture
	_, err = reg.Cart.AddItem(ctx, "buyer-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Checkout.PlaceOrder(ctx, "buyer-1", addShipping())
	require.NoError(t, err)

	open, err := mem.ListOpenStockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = reg.Catalog.Restock(ctx, "user-1", models.RoleVendor, p.ID, 20, "réassort")
	require.NoError(t, err)

	open, err = mem.ListOpenStockAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Catalog.CreateCategory(context.Background(), models.RoleConsumer, "Interdit", "", "", nil)
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}
