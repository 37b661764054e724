package store

import (
	"context"
	"sync"
	"testing"

	"ecohub_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, models.User{ID: "u1", Email: "a@b.fr"}))
	err := m.CreateUser(ctx, models.User{ID: "u2", Email: "a@b.fr"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDecrementStockConditional(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := gocql.TimeUUID()
	require.NoError(t, m.CreateProduct(ctx, models.Product{ID: id, Stock: 3, IsActive: true}))

	require.NoError(t, m.DecrementStock(ctx, id, 2))
	assert.ErrorIs(t, m.DecrementStock(ctx, id, 2), ErrOutOfStock)

	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
}

func TestDecrementStockConcurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := gocql.TimeUUID()
	require.NoError(t, m.CreateProduct(ctx, models.Product{ID: id, Stock: 5, IsActive: true}))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.DecrementStock(ctx, id, 1)
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrOutOfStock)
		}
	}
	assert.Equal(t, 5, ok)

	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestUpdateProductPreservesStock(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := gocql.TimeUUID()
	require.NoError(t, m.CreateProduct(ctx, models.Product{ID: id, Name: "Avant", Stock: 7, IsActive: true}))

	require.NoError(t, m.UpdateProduct(ctx, models.Product{ID: id, Name: "Après", Stock: 999, IsActive: true}))

	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Après", p.Name)
	assert.Equal(t, 7, p.Stock)
}

func TestInsertReviewUniquePerProductUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pid := gocql.TimeUUID()

	r := models.Review{ID: gocql.TimeUUID(), ProductID: pid, UserID: "u1"}
	require.NoError(t, m.InsertReview(ctx, r))

	dup := models.Review{ID: gocql.TimeUUID(), ProductID: pid, UserID: "u1"}
	assert.ErrorIs(t, m.InsertReview(ctx, dup), ErrDuplicateReview)

	other := models.Review{ID: gocql.TimeUUID(), ProductID: pid, UserID: "u2"}
	assert.NoError(t, m.InsertReview(ctx, other))
}

func TestCreateVendorWithRoleAtomic(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// Utilisateur inconnu : rien n'est écrit
	err := m.CreateVendorWithRole(ctx, models.Vendor{ID: gocql.TimeUUID(), UserID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetVendorByUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.CreateUser(ctx, models.User{ID: "u1", Email: "u1@b.fr", Role: models.RoleConsumer}))
	v := models.Vendor{ID: gocql.TimeUUID(), UserID: "u1", IsActive: true}
	require.NoError(t, m.CreateVendorWithRole(ctx, v))

	u, err := m.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, u.Role)

	assert.ErrorIs(t, m.CreateVendorWithRole(ctx, models.Vendor{ID: gocql.TimeUUID(), UserID: "u1"}), ErrAlreadyVendor)
}

func TestUserHasPurchasedIgnoresCancelled(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pid := gocql.TimeUUID()

	order := models.Order{
		OrderNumber: "ECO-20250101-AAAA1111",
		UserID:      "u1",
		Status:      models.OrderStatusPending,
		Items:       []models.OrderItem{{ProductID: pid.String(), Quantity: 1}},
	}
	require.NoError(t, m.InsertOrder(ctx, order))

	got, err := m.UserHasPurchased(ctx, "u1", pid)
	require.NoError(t, err)
	assert.True(t, got)

	applied, err := m.TransitionOrderStatus(ctx, order.OrderNumber, models.OrderStatusPending, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.True(t, applied)
	got, err = m.UserHasPurchased(ctx, "u1", pid)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSetUserPassword(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.ErrorIs(t, m.SetUserPassword(ctx, "ghost", "$argon2id$..."), ErrNotFound)

	require.NoError(t, m.CreateUser(ctx, models.User{ID: "u1", Email: "u1@b.fr", Password: "ancien"}))
	require.NoError(t, m.SetUserPassword(ctx, "u1", "nouveau"))

	u, err := m.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "nouveau", u.Password)
	assert.Equal(t, "u1@b.fr", u.Email)
}

func TestTransitionOrderStatusOnlyFromExpectedState(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	order := models.Order{
		OrderNumber: "ECO-20250101-BBBB2222",
		UserID:      "u1",
		Status:      models.OrderStatusPending,
	}
	require.NoError(t, m.InsertOrder(ctx, order))

	applied, err := m.TransitionOrderStatus(ctx, order.OrderNumber, models.OrderStatusPending, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, applied)

	// Le statut n'est plus pending : la même transition ne s'applique pas
	applied, err = m.TransitionOrderStatus(ctx, order.OrderNumber, models.OrderStatusPending, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := m.GetOrder(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	_, err = m.TransitionOrderStatus(ctx, "ECO-00000000-XXXXXXXX", models.OrderStatusPending, models.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartItemsDetachedFromStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	saved := models.Cart{UserID: "u1", Items: []models.CartItem{{ProductID: "p1", Quantity: 1, Price: 4.50}}}
	require.NoError(t, m.SaveCart(ctx, saved))

	// Mutation du slice passé à SaveCart : l'état du store ne bouge pas
	saved.Items[0].Quantity = 99
	cart, err := m.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// Mutation du panier rendu par GetCart : même garantie
	cart.Items[0].Quantity = 42
	again, err := m.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestCartLazyCreationAndClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	cart, err := m.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Quantity: 2, Price: 4.50})
	require.NoError(t, m.SaveCart(ctx, cart))
	require.NoError(t, m.ClearCart(ctx, "u1"))

	cart, err = m.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
