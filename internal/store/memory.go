package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ecohub_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Memory est l'implémentation en mémoire du Store, utilisée par les tests
// et le mode développement sans bases de données. Toutes les opérations
// sont atomiques sous un même mutex, ce qui en fait la référence de
// comportement pour l'implémentation ScyllaDB.
type Memory struct {
	mu sync.Mutex

	users        map[string]models.User   // user_id → user
	usersByEmail map[string]string        // email → user_id
	categories   map[gocql.UUID]models.Category
	products     map[gocql.UUID]models.Product
	carts        map[string]models.Cart   // user_id → cart
	orders       map[string]models.Order  // order_number → order
	reviews      map[string]models.Review // product_id|user_id → review
	reviewsByID  map[gocql.UUID]string    // review_id → clé composite
	vendors      map[gocql.UUID]models.Vendor
	vendorByUser map[string]gocql.UUID
	movements    []models.StockMovement
	alerts       map[gocql.UUID]models.StockAlert
	audit        []models.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		usersByEmail: make(map[string]string),
		categories:   make(map[gocql.UUID]models.Category),
		products:     make(map[gocql.UUID]models.Product),
		carts:        make(map[string]models.Cart),
		orders:       make(map[string]models.Order),
		reviews:      make(map[string]models.Review),
		reviewsByID:  make(map[gocql.UUID]string),
		vendors:      make(map[gocql.UUID]models.Vendor),
		vendorByUser: make(map[string]gocql.UUID),
		alerts:       make(map[gocql.UUID]models.StockAlert),
	}
}

func reviewKey(productID gocql.UUID, userID string) string {
	return productID.String() + "|" + userID
}

// --- Utilisateurs ---

func (m *Memory) CreateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[u.Email]; ok {
		return ErrAlreadyExists
	}
	m.users[u.ID] = u
	m.usersByEmail[u.Email] = u.ID
	return nil
}

func (m *Memory) GetUser(_ context.Context, userID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) UpdateUserProfile(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = u.Name
	existing.Phone = u.Phone
	existing.Address = u.Address
	existing.City = u.City
	existing.State = u.State
	existing.Zip = u.Zip
	existing.Country = u.Country
	existing.SustainabilityGoals = u.SustainabilityGoals
	m.users[u.ID] = existing
	return nil
}

func (m *Memory) SetUserPassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	m.users[userID] = u
	return nil
}

func (m *Memory) AddCarbonOffset(_ context.Context, userID string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.CarbonOffset += delta
	m.users[userID] = u
	return nil
}

// --- Catalogue ---

func (m *Memory) CreateCategory(_ context.Context, cat models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[cat.ID] = cat
	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetCategoryBySlug(_ context.Context, slug string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (m *Memory) CreateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	// Le stock ne se modifie que via les primitives atomiques
	p.Stock = existing.Stock
	m.products[p.ID] = p
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id gocql.UUID) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetProductBySlug(_ context.Context, slug string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (m *Memory) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var categoryID *gocql.UUID
	if f.CategorySlug != "" {
		cat, err := m.GetCategoryBySlug(ctx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	needle := strings.ToLower(f.Search)
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		if f.Certification != "" && p.Certifications != f.Certification {
			continue
		}
		if f.EnergyRating != "" && p.EnergyEfficiencyRating != f.EnergyRating {
			continue
		}
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if f.VendorID != nil && p.VendorID != *f.VendorID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) DecrementStock(_ context.Context, id gocql.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrOutOfStock
	}
	p.Stock -= qty
	m.products[id] = p
	return nil
}

func (m *Memory) IncrementStock(_ context.Context, id gocql.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	m.products[id] = p
	return nil
}

func (m *Memory) RecordStockMovement(_ context.Context, mv models.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, mv)
	return nil
}

func (m *Memory) CreateStockAlert(_ context.Context, a models.StockAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.ID] = a
	return nil
}

func (m *Memory) ListOpenStockAlerts(_ context.Context) ([]models.StockAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StockAlert
	for _, a := range m.alerts {
		if !a.IsResolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) ResolveStockAlert(_ context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return ErrNotFound
	}
	a.IsResolved = true
	m.alerts[id] = a
	return nil
}

// --- Panier ---

// copyCart détache le slice d'items : le panier rendu (ou reçu) ne doit
// jamais partager sa mémoire avec l'état du store, comme pour Redis où
// la sérialisation JSON fait naturellement cette coupure
func copyCart(cart models.Cart) models.Cart {
	if cart.Items != nil {
		items := make([]models.CartItem, len(cart.Items))
		copy(items, cart.Items)
		cart.Items = items
	}
	return cart
}

func (m *Memory) GetCart(_ context.Context, userID string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		// création paresseuse : un panier absent est un panier vide
		cart = models.Cart{UserID: userID}
		m.carts[userID] = cart
	}
	return copyCart(cart), nil
}

func (m *Memory) SaveCart(_ context.Context, cart models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (m *Memory) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = models.Cart{UserID: userID}
	return nil
}

// --- Commandes ---

func (m *Memory) InsertOrder(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.OrderNumber]; ok {
		return ErrAlreadyExists
	}
	m.orders[o.OrderNumber] = o
	return nil
}

func (m *Memory) DeleteOrder(_ context.Context, orderNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, orderNumber)
	return nil
}

func (m *Memory) GetOrder(_ context.Context, orderNumber string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (m *Memory) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) TransitionOrderStatus(_ context.Context, orderNumber, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	m.orders[orderNumber] = o
	return true, nil
}

func (m *Memory) SetOrderPaymentIntent(_ context.Context, orderNumber, paymentIntentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return ErrNotFound
	}
	o.PaymentIntentID = paymentIntentID
	m.orders[orderNumber] = o
	return nil
}

func (m *Memory) UserHasPurchased(_ context.Context, userID string, productID gocql.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid := productID.String()
	for _, o := range m.orders {
		if o.UserID != userID || o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == pid {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- Avis ---

func (m *Memory) InsertReview(_ context.Context, r models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reviewKey(r.ProductID, r.UserID)
	if _, ok := m.reviews[key]; ok {
		return ErrDuplicateReview
	}
	m.reviews[key] = r
	m.reviewsByID[r.ID] = key
	return nil
}

func (m *Memory) GetReview(_ context.Context, reviewID gocql.UUID) (models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.reviewsByID[reviewID]
	if !ok {
		return models.Review{}, ErrNotFound
	}
	return m.reviews[key], nil
}

func (m *Memory) ListReviewsByProduct(_ context.Context, productID gocql.UUID, approvedOnly bool) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		if r.ProductID != productID {
			continue
		}
		if approvedOnly && !r.IsApproved {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SetReviewApproved(_ context.Context, reviewID gocql.UUID) error {
	return m.setReviewFlag(reviewID, func(r *models.Review) { r.IsApproved = true })
}

func (m *Memory) SetReviewVerified(_ context.Context, reviewID gocql.UUID) error {
	return m.setReviewFlag(reviewID, func(r *models.Review) { r.IsVerifiedPurchase = true })
}

func (m *Memory) setReviewFlag(reviewID gocql.UUID, apply func(*models.Review)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.reviewsByID[reviewID]
	if !ok {
		return ErrNotFound
	}
	r := m.reviews[key]
	apply(&r)
	m.reviews[key] = r
	return nil
}

func (m *Memory) IncrementHelpfulVotes(_ context.Context, reviewID gocql.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.reviewsByID[reviewID]
	if !ok {
		return 0, ErrNotFound
	}
	r := m.reviews[key]
	r.HelpfulVotes++
	m.reviews[key] = r
	return r.HelpfulVotes, nil
}

// --- Vendeurs ---

func (m *Memory) CreateVendorWithRole(_ context.Context, v models.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vendorByUser[v.UserID]; ok {
		return ErrAlreadyVendor
	}
	u, ok := m.users[v.UserID]
	if !ok {
		return ErrNotFound
	}
	// Les deux écritures sous le même verrou : tout ou rien
	m.vendors[v.ID] = v
	m.vendorByUser[v.UserID] = v.ID
	u.Role = models.RoleVendor
	m.users[v.UserID] = u
	return nil
}

func (m *Memory) GetVendor(_ context.Context, vendorID gocql.UUID) (models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[vendorID]
	if !ok {
		return models.Vendor{}, ErrNotFound
	}
	return v, nil
}

func (m *Memory) GetVendorByUser(_ context.Context, userID string) (models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.vendorByUser[userID]
	if !ok {
		return models.Vendor{}, ErrNotFound
	}
	return m.vendors[id], nil
}

func (m *Memory) ListVendors(_ context.Context, status string) ([]models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Vendor
	for _, v := range m.vendors {
		if !v.IsActive {
			continue
		}
		if status != "" && v.VerificationStatus != status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (m *Memory) UpdateVendorStatus(_ context.Context, vendorID gocql.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[vendorID]
	if !ok {
		return ErrNotFound
	}
	v.VerificationStatus = status
	m.vendors[vendorID] = v
	return nil
}

func (m *Memory) SetVendorDocuments(_ context.Context, vendorID gocql.UUID, certURL, docsURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[vendorID]
	if !ok {
		return ErrNotFound
	}
	if certURL != "" {
		v.SustainabilityCertURL = certURL
	}
	if docsURL != "" {
		v.VerificationDocumentsURL = docsURL
	}
	m.vendors[vendorID] = v
	return nil
}

// --- Audit ---

func (m *Memory) RecordAudit(_ context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, e)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditEntry, len(m.audit))
	copy(out, m.audit)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
