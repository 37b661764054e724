package services

import (
	"context"
	"testing"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodReview() ReviewInput {
	return ReviewInput{
		OverallRating:   5,
		EcoImpactRating: 4,
		ValueForMoney:   4,
		BuildQuality:    5,
		Title:           "Très satisfait",
		Comment:         "Solide et vraiment économe.",
		WouldRecommend:  true,
	}
}

func TestSubmitReview(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Frigo A++", 600.00, 5)

	r, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)
	assert.False(t, r.IsApproved, "un avis nait non approuvé")
	assert.False(t, r.IsVerifiedPurchase, "pas d'achat, pas de badge")
	assert.Equal(t, 4.5, r.AverageRating())
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Sèche-linge", 400.00, 5)

	in := goodReview()
	in.EcoImpactRating = 0
	_, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, in)
	assert.ErrorIs(t, err, store.ErrInvalidRating)

	in = goodReview()
	in.BuildQuality = 6
	_, err = reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, in)
	assert.ErrorIs(t, err, store.ErrInvalidRating)
}

func TestSubmitReviewDuplicateRejected(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Bouilloire", 40.00, 5)

	_, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)

	_, err = reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	assert.ErrorIs(t, err, store.ErrDuplicateReview)

	// Un autre utilisateur peut noter le même produit
	_, err = reg.Reviews.Submit(ctx, "user-2", "Marc", p.ID, goodReview())
	assert.NoError(t, err)
}

func TestSubmitReviewVerifiedPurchaseBadge(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "user-1", models.RoleConsumer)
	p := seedProduct(t, mem, "Thermostat", 55.00, 5)

	_, err := reg.Cart.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	_, err = reg.Checkout.PlaceOrder(ctx, "user-1", addShipping())
	require.NoError(t, err)

	r, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)
	assert.True(t, r.IsVerifiedPurchase)
}

func TestSummaryCountsOnlyApproved(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	seedUser(t, mem, "admin-1", models.RoleAdmin)
	p := seedProduct(t, mem, "Four Combiné", 700.00, 5)

	approved, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, ReviewInput{
		OverallRating: 4, EcoImpactRating: 4, ValueForMoney: 4, BuildQuality: 4,
	})
	require.NoError(t, err)
	_, err = reg.Reviews.Submit(ctx, "user-2", "Marc", p.ID, ReviewInput{
		OverallRating: 1, EcoImpactRating: 1, ValueForMoney: 1, BuildQuality: 1,
	})
	require.NoError(t, err)

	// Rien d'approuvé : forme stable, tout à zéro
	summary, err := reg.Reviews.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{}, summary)

	_, err = reg.Reviews.Approve(ctx, "admin-1", models.RoleAdmin, approved.ID)
	require.NoError(t, err)

	// L'avis à 1 étoile non approuvé ne pèse pas dans la moyenne
	summary, err = reg.Reviews.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.Overall)
	assert.Equal(t, 1, summary.TotalReviews)

	visible, err := reg.Reviews.ListApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestApproveRequiresAdmin(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Cafetière", 90.00, 5)

	r, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)

	_, err = reg.Reviews.Approve(ctx, "user-1", models.RoleConsumer, r.ID)
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	seedUser(t, mem, "admin-1", models.RoleAdmin)
	out, err := reg.Reviews.Approve(ctx, "admin-1", models.RoleAdmin, r.ID)
	require.NoError(t, err)
	assert.True(t, out.IsApproved)

	// Approuver deux fois est un no-op
	out, err = reg.Reviews.Approve(ctx, "admin-1", models.RoleAdmin, r.ID)
	require.NoError(t, err)
	assert.True(t, out.IsApproved)
}

func TestMarkHelpful(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Mixeur", 60.00, 5)

	r, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)

	n, err := reg.Reviews.MarkHelpful(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = reg.Reviews.MarkHelpful(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSubmitReviewUnknownProduct(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Ancien Modèle", 20.00, 5)
	p.IsActive = false
	require.NoError(t, mem.UpdateProduct(ctx, p))

	_, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyPurchaseRequiresAdmin(t *testing.T) {
	reg, mem := newTestRegistry(t)
	ctx := context.Background()
	p := seedProduct(t, mem, "Chauffe-Eau Solaire", 300.00, 5)

	r, err := reg.Reviews.Submit(ctx, "user-1", "Claire", p.ID, goodReview())
	require.NoError(t, err)
	assert.False(t, r.IsVerifiedPurchase)

	_, err = reg.Reviews.VerifyPurchase(ctx, models.RoleConsumer, r.ID)
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	out, err := reg.Reviews.VerifyPurchase(ctx, models.RoleAdmin, r.ID)
	require.NoError(t, err)
	assert.True(t, out.IsVerifiedPurchase)

	// Idempotent
	out, err = reg.Reviews.VerifyPurchase(ctx, models.RoleAdmin, r.ID)
	require.NoError(t, err)
	assert.True(t, out.IsVerifiedPurchase)
}
