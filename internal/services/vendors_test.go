package services

import (
	"context"
	"testing"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorApplication() models.VendorApplication {
	return models.VendorApplication{
		CompanyName:     "ÉcoFabrique",
		BusinessLicense: "LIC-12345",
		TaxID:           "FR-987654",
		BusinessAddress: "3 allée des Érables, Nantes",
		ContactPhone:    "+33 6 12 34 56 78",
	}
}

func TestVendorApply(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)

	v, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)
	assert.Equal(t, models.VendorStatusPending, v.VerificationStatus)
	assert.False(t, v.IsVerified())

	// Le rôle de l'utilisateur a basculé en même temps
	u, err := mem.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, u.Role)
}

func TestVendorApplyTwiceRejected(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)

	_, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)

	_, err = reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	assert.ErrorIs(t, err, store.ErrAlreadyVendor)
}

func TestVendorApplyUnknownUser(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Vendors.Apply(context.Background(), "ghost", vendorApplication())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVendorStatusTransitions(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	seedUser(t, mem, "admin-1", models.RoleAdmin)

	v, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)

	// pending → verified
	out, err := reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusVerified)
	require.NoError(t, err)
	assert.True(t, out.IsVerified())

	// verified → suspended → verified
	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusSuspended)
	require.NoError(t, err)
	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusVerified)
	require.NoError(t, err)

	// verified → rejected n'existe pas
	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusRejected)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// même statut : no-op
	out, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusVerified)
	require.NoError(t, err)
	assert.True(t, out.IsVerified())
}

func TestVendorRejectedIsTerminal(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	seedUser(t, mem, "admin-1", models.RoleAdmin)

	v, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)

	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusRejected)
	require.NoError(t, err)

	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusVerified)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestVendorSetStatusRequiresAdmin(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)

	v, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)

	_, err = reg.Vendors.SetStatus(ctx, "user-1", models.RoleVendor, v.ID, models.VendorStatusVerified)
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestVendorStatusChangeIsAudited(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	seedUser(t, mem, "admin-1", models.RoleAdmin)

	v, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)
	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v.ID, models.VendorStatusVerified)
	require.NoError(t, err)

	entries, err := mem.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vendor.status_change", entries[0].Action)
	assert.Equal(t, "admin-1", entries[0].ActorID)
	assert.Equal(t, v.ID.String(), entries[0].TargetID)
	assert.Equal(t, "pending -> verified", entries[0].Details)
}

func TestVendorListFilterByStatus(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	seedUser(t, mem, "user-2", models.RoleConsumer)
	seedUser(t, mem, "admin-1", models.RoleAdmin)

	v1, err := reg.Vendors.Apply(ctx, "user-1", vendorApplication())
	require.NoError(t, err)
	_, err = reg.Vendors.Apply(ctx, "user-2", vendorApplication())
	require.NoError(t, err)
	_, err = reg.Vendors.SetStatus(ctx, "admin-1", models.RoleAdmin, v1.ID, models.VendorStatusVerified)
	require.NoError(t, err)

	verified, err := reg.Vendors.List(ctx, models.VendorStatusVerified)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, v1.ID, verified[0].ID)

	all, err := reg.Vendors.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
