package services

import (
	"context"
	"testing"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	reg := &Registry{
		Store:    mem,
		Cart:     NewCartService(mem),
		Checkout: NewCheckoutService(mem),
		Reviews:  NewReviewService(mem),
		Vendors:  NewVendorService(mem),
		Catalog:  NewCatalogService(mem),
	}
	return reg, mem
}

func seedUser(t *testing.T, st store.Store, id, role string) models.User {
	t.Helper()
	u := models.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  "Utilisateur " + id,
		Role:  role,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, st store.Store, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		ID:              gocql.TimeUUID(),
		VendorID:        gocql.TimeUUID(),
		CategoryID:      gocql.TimeUUID(),
		Name:            name,
		Slug:            slugify(name),
		Price:           price,
		Stock:           stock,
		CarbonFootprint: 2.5,
		IsActive:        true,
	}
	require.NoError(t, st.CreateProduct(context.Background(), p))
	return p
}

func seedVerifiedVendor(t *testing.T, st store.Store, userID string) models.Vendor {
	t.Helper()
	seedUser(t, st, userID, models.RoleConsumer)
	v := models.Vendor{
		ID:                 gocql.TimeUUID(),
		UserID:             userID,
		CompanyName:        "Verte & Co " + userID,
		VerificationStatus: models.VendorStatusVerified,
		IsActive:           true,
	}
	require.NoError(t, st.CreateVendorWithRole(context.Background(), v))
	return v
}

func addShipping() models.ShippingInfo {
	return models.ShippingInfo{
		Address: "12 rue des Lilas",
		City:    "Lyon",
		Zip:     "69003",
		Country: "France",
	}
}
