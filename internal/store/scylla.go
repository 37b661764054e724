package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ecohub_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

const (
	cartTTL = 30 * 24 * time.Hour // même durée de vie que le panier côté front

	// Nombre d'essais d'un compare-and-swap avant d'abandonner.
	// Les LWT échouent sous contention, pas en cas d'erreur : on relit et on réessaie.
	casMaxRetries = 10
)

// Scylla implémente Store sur ScyllaDB (3 keyspaces : catalogue,
// utilisateurs, commandes) et Redis pour les paniers.
//
// Les invariants multi-lignes reposent sur :
//   - LWT (IF ... / IF NOT EXISTS) pour les compteurs et l'unicité,
//   - des batchs loggés pour les écritures entête+index d'un même keyspace,
//   - la compensation au niveau service pour le reste (saga du checkout).
type Scylla struct {
	Catalog *gocql.Session
	Users   *gocql.Session
	Orders  *gocql.Session
	Redis   *redis.Client
}

var _ Store = (*Scylla)(nil)
var _ Store = (*Memory)(nil)

func NewScylla(catalog, users, orders *gocql.Session, rdb *redis.Client) *Scylla {
	return &Scylla{Catalog: catalog, Users: users, Orders: orders, Redis: rdb}
}

// --- Utilisateurs ---

func (s *Scylla) CreateUser(ctx context.Context, u models.User) error {
	// users_by_email en LWT : garantit l'unicité de l'email
	applied, err := s.Users.Query(
		`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		u.Email, u.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrAlreadyExists
	}

	now := time.Now()
	err = s.Users.Query(`INSERT INTO users (user_id, email, name, password, role, provider, provider_id,
			phone, carbon_offset, address, city, state, zip, country, sustainability_goals, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Password, u.Role, u.Provider, u.ProviderID,
		u.Phone, u.CarbonOffset, u.Address, u.City, u.State, u.Zip, u.Country,
		u.SustainabilityGoals, now, now).WithContext(ctx).Exec()
	if err != nil {
		// compensation : on libère l'email réservé
		_ = s.Users.Query(`DELETE FROM users_by_email WHERE email = ?`, u.Email).Exec()
		return err
	}
	return nil
}

func (s *Scylla) GetUser(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	u.ID = userID
	err := s.Users.Query(`SELECT email, name, password, role, provider, provider_id, phone,
			carbon_offset, address, city, state, zip, country, sustainability_goals
		FROM users WHERE user_id = ?`, userID).WithContext(ctx).Scan(
		&u.Email, &u.Name, &u.Password, &u.Role, &u.Provider, &u.ProviderID, &u.Phone,
		&u.CarbonOffset, &u.Address, &u.City, &u.State, &u.Zip, &u.Country, &u.SustainabilityGoals)
	if err == gocql.ErrNotFound {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *Scylla) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var userID string
	err := s.Users.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&userID)
	if err == gocql.ErrNotFound {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return s.GetUser(ctx, userID)
}

func (s *Scylla) UpdateUserProfile(ctx context.Context, u models.User) error {
	return s.Users.Query(`UPDATE users SET name = ?, phone = ?, address = ?, city = ?, state = ?,
			zip = ?, country = ?, sustainability_goals = ?, updated_at = ? WHERE user_id = ?`,
		u.Name, u.Phone, u.Address, u.City, u.State, u.Zip, u.Country,
		u.SustainabilityGoals, time.Now(), u.ID).WithContext(ctx).Exec()
}

func (s *Scylla) SetUserPassword(ctx context.Context, userID, passwordHash string) error {
	return s.Users.Query(`UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?`,
		passwordHash, time.Now(), userID).WithContext(ctx).Exec()
}

func (s *Scylla) AddCarbonOffset(ctx context.Context, userID string, delta float64) error {
	// compare-and-swap sur la valeur courante : pas de read-modify-write perdu
	for i := 0; i < casMaxRetries; i++ {
		var current float64
		err := s.Users.Query(`SELECT carbon_offset FROM users WHERE user_id = ?`, userID).
			WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		applied, err := s.Users.Query(
			`UPDATE users SET carbon_offset = ? WHERE user_id = ? IF carbon_offset = ?`,
			current+delta, userID, current).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("carbon_offset: trop de contention pour %s", userID)
}

// --- Catalogue ---

func (s *Scylla) CreateCategory(ctx context.Context, cat models.Category) error {
	batch := s.Catalog.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO categories (category_id, name, slug, description, icon, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.Icon, cat.ParentID, time.Now())
	batch.Query(`INSERT INTO categories_by_slug (slug, category_id) VALUES (?, ?)`, cat.Slug, cat.ID)
	return s.Catalog.ExecuteBatch(batch)
}

func (s *Scylla) ListCategories(ctx context.Context) ([]models.Category, error) {
	iter := s.Catalog.Query(`SELECT category_id, name, slug, description, icon, parent_id FROM categories`).
		WithContext(ctx).Iter()
	var out []models.Category
	var c models.Category
	for iter.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.ParentID) {
		out = append(out, c)
		c = models.Category{}
	}
	return out, iter.Close()
}

func (s *Scylla) GetCategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	var id gocql.UUID
	err := s.Catalog.Query(`SELECT category_id FROM categories_by_slug WHERE slug = ?`, slug).
		WithContext(ctx).Scan(&id)
	if err == gocql.ErrNotFound {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, err
	}
	var c models.Category
	c.ID = id
	err = s.Catalog.Query(`SELECT name, slug, description, icon, parent_id FROM categories WHERE category_id = ?`, id).
		WithContext(ctx).Scan(&c.Name, &c.Slug, &c.Description, &c.Icon, &c.ParentID)
	if err == gocql.ErrNotFound {
		return models.Category{}, ErrNotFound
	}
	return c, err
}

const productColumns = `product_id, vendor_id, category_id, name, slug, description, price, discounted_price,
	stock, energy_efficiency_rating, carbon_footprint, energy_consumption, recyclable_percentage,
	certifications, warranty_years, image_urls, low_stock_threshold, is_featured, is_active, created_at, updated_at`

func scanProduct(scan func(...interface{}) error) (models.Product, error) {
	var p models.Product
	err := scan(&p.ID, &p.VendorID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price,
		&p.DiscountedPrice, &p.Stock, &p.EnergyEfficiencyRating, &p.CarbonFootprint,
		&p.EnergyConsumption, &p.RecyclablePercentage, &p.Certifications, &p.WarrantyYears,
		&p.ImageURLs, &p.LowStockThreshold, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Scylla) CreateProduct(ctx context.Context, p models.Product) error {
	now := time.Now()
	batch := s.Catalog.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.VendorID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.DiscountedPrice,
		p.Stock, p.EnergyEfficiencyRating, p.CarbonFootprint, p.EnergyConsumption,
		p.RecyclablePercentage, p.Certifications, p.WarrantyYears, p.ImageURLs,
		p.LowStockThreshold, p.IsFeatured, p.IsActive, now, now)
	batch.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?)`, p.Slug, p.ID)
	return s.Catalog.ExecuteBatch(batch)
}

func (s *Scylla) UpdateProduct(ctx context.Context, p models.Product) error {
	// le stock ne passe jamais par ici : primitives atomiques uniquement
	return s.Catalog.Query(`UPDATE products SET name = ?, description = ?, price = ?, discounted_price = ?,
			energy_efficiency_rating = ?, carbon_footprint = ?, energy_consumption = ?,
			recyclable_percentage = ?, certifications = ?, warranty_years = ?, image_urls = ?,
			low_stock_threshold = ?, is_featured = ?, is_active = ?, updated_at = ?
		WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.DiscountedPrice, p.EnergyEfficiencyRating,
		p.CarbonFootprint, p.EnergyConsumption, p.RecyclablePercentage, p.Certifications,
		p.WarrantyYears, p.ImageURLs, p.LowStockThreshold, p.IsFeatured, p.IsActive,
		time.Now(), p.ID).WithContext(ctx).Exec()
}

func (s *Scylla) GetProduct(ctx context.Context, id gocql.UUID) (models.Product, error) {
	q := s.Catalog.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	p, err := scanProduct(q.Scan)
	if err == gocql.ErrNotFound {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *Scylla) GetProductBySlug(ctx context.Context, slug string) (models.Product, error) {
	var id gocql.UUID
	err := s.Catalog.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, slug).
		WithContext(ctx).Scan(&id)
	if err == gocql.ErrNotFound {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Scylla) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var categoryID *gocql.UUID
	if f.CategorySlug != "" {
		cat, err := s.GetCategoryBySlug(ctx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}

	// Catalogue de taille raisonnable : scan de la table et filtrage côté
	// application, la recherche plein texte passe par Elasticsearch.
	iter := s.Catalog.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	var out []models.Product
	for {
		p, err := scanProduct(func(dest ...interface{}) error {
			if !iter.Scan(dest...) {
				return gocql.ErrNotFound
			}
			return nil
		})
		if err != nil {
			break
		}
		if !matchProduct(p, f, categoryID) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, iter.Close()
}

func matchProduct(p models.Product, f ProductFilter, categoryID *gocql.UUID) bool {
	if !p.IsActive {
		return false
	}
	if categoryID != nil && p.CategoryID != *categoryID {
		return false
	}
	if f.Certification != "" && p.Certifications != f.Certification {
		return false
	}
	if f.EnergyRating != "" && p.EnergyEfficiencyRating != f.EnergyRating {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if f.VendorID != nil && p.VendorID != *f.VendorID {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s *Scylla) DecrementStock(ctx context.Context, id gocql.UUID, qty int) error {
	for i := 0; i < casMaxRetries; i++ {
		var current int
		err := s.Catalog.Query(`SELECT stock FROM products WHERE product_id = ?`, id).
			WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if current < qty {
			return ErrOutOfStock
		}
		// LWT : le décrément ne s'applique que si personne n'est passé entre temps
		applied, err := s.Catalog.Query(
			`UPDATE products SET stock = ? WHERE product_id = ? IF stock = ?`,
			current-qty, id, current).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("stock: trop de contention pour %s", id)
}

func (s *Scylla) IncrementStock(ctx context.Context, id gocql.UUID, qty int) error {
	for i := 0; i < casMaxRetries; i++ {
		var current int
		err := s.Catalog.Query(`SELECT stock FROM products WHERE product_id = ?`, id).
			WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		applied, err := s.Catalog.Query(
			`UPDATE products SET stock = ? WHERE product_id = ? IF stock = ?`,
			current+qty, id, current).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("stock: trop de contention pour %s", id)
}

func (s *Scylla) RecordStockMovement(ctx context.Context, m models.StockMovement) error {
	return s.Catalog.Query(`INSERT INTO stock_movements (id, product_id, type, quantity, prev_stock,
			new_stock, reason, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.Type, m.Quantity, m.PrevStock, m.NewStock, m.Reason, m.UserID, m.CreatedAt).
		WithContext(ctx).Exec()
}

func (s *Scylla) CreateStockAlert(ctx context.Context, a models.StockAlert) error {
	return s.Catalog.Query(`INSERT INTO stock_alerts (id, product_id, product_name, current_stock,
			threshold_stock, alert_type, is_resolved, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProductID, a.ProductName, a.CurrentStock, a.ThresholdStock, a.AlertType,
		a.IsResolved, a.CreatedAt).WithContext(ctx).Exec()
}

func (s *Scylla) ListOpenStockAlerts(ctx context.Context) ([]models.StockAlert, error) {
	iter := s.Catalog.Query(`SELECT id, product_id, product_name, current_stock, threshold_stock,
			alert_type, is_resolved, created_at FROM stock_alerts`).WithContext(ctx).Iter()
	var out []models.StockAlert
	var a models.StockAlert
	for iter.Scan(&a.ID, &a.ProductID, &a.ProductName, &a.CurrentStock, &a.ThresholdStock,
		&a.AlertType, &a.IsResolved, &a.CreatedAt) {
		if !a.IsResolved {
			out = append(out, a)
		}
	}
	return out, iter.Close()
}

func (s *Scylla) ResolveStockAlert(ctx context.Context, id gocql.UUID) error {
	return s.Catalog.Query(`UPDATE stock_alerts SET is_resolved = true WHERE id = ?`, id).
		WithContext(ctx).Exec()
}

// --- Panier (Redis) ---

func cartKey(userID string) string { return "cart:" + userID }

func (s *Scylla) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	cart := models.Cart{UserID: userID}
	data, err := s.Redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return cart, nil // panier absent = panier vide
	}
	if err != nil {
		return cart, err
	}
	if err := json.Unmarshal([]byte(data), &cart.Items); err != nil {
		log.Printf("⚠️ Panier corrompu pour %s, on repart à vide: %v", userID, err)
		return models.Cart{UserID: userID}, nil
	}
	return cart, nil
}

func (s *Scylla) SaveCart(ctx context.Context, cart models.Cart) error {
	data, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, cartKey(cart.UserID), data, cartTTL).Err()
}

func (s *Scylla) ClearCart(ctx context.Context, userID string) error {
	return s.Redis.Del(ctx, cartKey(userID)).Err()
}

// --- Commandes ---

func (s *Scylla) InsertOrder(ctx context.Context, o models.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	// entête + index par utilisateur dans un batch loggé : les deux lignes
	// sont appliquées ensemble ou pas du tout
	batch := s.Orders.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (order_number, user_id, subtotal, shipping_cost, tax, total,
			total_carbon_offset, shipping_address, shipping_city, shipping_state, shipping_zip,
			shipping_country, status, payment_intent_id, items, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.UserID, o.Subtotal, o.ShippingCost, o.Tax, o.Total,
		o.TotalCarbonOffset, o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingZip,
		o.ShippingCountry, o.Status, o.PaymentIntentID, string(itemsJSON), o.CreatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, order_number, total, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		o.UserID, o.OrderNumber, o.Total, o.Status, o.CreatedAt)
	return s.Orders.ExecuteBatch(batch)
}

func (s *Scylla) DeleteOrder(ctx context.Context, orderNumber string) error {
	o, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return err
	}
	batch := s.Orders.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM orders WHERE order_number = ?`, orderNumber)
	batch.Query(`DELETE FROM orders_by_user WHERE user_id = ? AND order_number = ?`, o.UserID, orderNumber)
	return s.Orders.ExecuteBatch(batch)
}

func (s *Scylla) GetOrder(ctx context.Context, orderNumber string) (models.Order, error) {
	var o models.Order
	var itemsJSON string
	o.OrderNumber = orderNumber
	err := s.Orders.Query(`SELECT user_id, subtotal, shipping_cost, tax, total, total_carbon_offset,
			shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country,
			status, payment_intent_id, items, created_at
		FROM orders WHERE order_number = ?`, orderNumber).WithContext(ctx).Scan(
		&o.UserID, &o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total, &o.TotalCarbonOffset,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingZip, &o.ShippingCountry,
		&o.Status, &o.PaymentIntentID, &itemsJSON, &o.CreatedAt)
	if err == gocql.ErrNotFound {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return models.Order{}, fmt.Errorf("items illisibles pour %s: %w", orderNumber, err)
	}
	return o, nil
}

func (s *Scylla) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	iter := s.Orders.Query(`SELECT order_number FROM orders_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()
	var numbers []string
	var number string
	for iter.Scan(&number) {
		numbers = append(numbers, number)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	var out []models.Order
	for _, n := range numbers {
		o, err := s.GetOrder(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Scylla) TransitionOrderStatus(ctx context.Context, orderNumber, from, to string) (bool, error) {
	o, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return false, err
	}
	// LWT sur la table principale : un seul gagnant par transition. La vue
	// orders_by_user suit sans condition, l'écriture conditionnelle ne peut
	// pas s'étendre sur deux partitions.
	applied, err := s.Orders.Query(
		`UPDATE orders SET status = ? WHERE order_number = ? IF status = ?`,
		to, orderNumber, from).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}
	if err := s.Orders.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND order_number = ?`,
		to, o.UserID, orderNumber).WithContext(ctx).Exec(); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Scylla) SetOrderPaymentIntent(ctx context.Context, orderNumber, paymentIntentID string) error {
	return s.Orders.Query(`UPDATE orders SET payment_intent_id = ? WHERE order_number = ?`,
		paymentIntentID, orderNumber).WithContext(ctx).Exec()
}

func (s *Scylla) UserHasPurchased(ctx context.Context, userID string, productID gocql.UUID) (bool, error) {
	orders, err := s.ListOrdersByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	pid := productID.String()
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
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

func (s *Scylla) InsertReview(ctx context.Context, r models.Review) error {
	// la clé primaire ((product_id), user_id) + IF NOT EXISTS porte
	// l'invariant "un avis par utilisateur et par produit"
	applied, err := s.Catalog.Query(`INSERT INTO reviews_by_product (product_id, user_id, review_id,
			user_name, overall_rating, eco_impact_rating, value_for_money, build_quality,
			title, comment, would_recommend, is_verified_purchase, is_approved, helpful_votes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		r.ProductID, r.UserID, r.ID, r.UserName, r.OverallRating, r.EcoImpactRating,
		r.ValueForMoney, r.BuildQuality, r.Title, r.Comment, r.WouldRecommend,
		r.IsVerifiedPurchase, r.IsApproved, r.HelpfulVotes, r.CreatedAt).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrDuplicateReview
	}
	return s.Catalog.Query(`INSERT INTO reviews_by_id (review_id, product_id, user_id) VALUES (?, ?, ?)`,
		r.ID, r.ProductID, r.UserID).WithContext(ctx).Exec()
}

func (s *Scylla) reviewLocation(ctx context.Context, reviewID gocql.UUID) (gocql.UUID, string, error) {
	var productID gocql.UUID
	var userID string
	err := s.Catalog.Query(`SELECT product_id, user_id FROM reviews_by_id WHERE review_id = ?`, reviewID).
		WithContext(ctx).Scan(&productID, &userID)
	if err == gocql.ErrNotFound {
		return productID, "", ErrNotFound
	}
	return productID, userID, err
}

func (s *Scylla) GetReview(ctx context.Context, reviewID gocql.UUID) (models.Review, error) {
	productID, userID, err := s.reviewLocation(ctx, reviewID)
	if err != nil {
		return models.Review{}, err
	}
	var r models.Review
	r.ProductID = productID
	r.UserID = userID
	err = s.Catalog.Query(`SELECT review_id, user_name, overall_rating, eco_impact_rating,
			value_for_money, build_quality, title, comment, would_recommend,
			is_verified_purchase, is_approved, helpful_votes, created_at
		FROM reviews_by_product WHERE product_id = ? AND user_id = ?`, productID, userID).
		WithContext(ctx).Scan(&r.ID, &r.UserName, &r.OverallRating, &r.EcoImpactRating,
		&r.ValueForMoney, &r.BuildQuality, &r.Title, &r.Comment, &r.WouldRecommend,
		&r.IsVerifiedPurchase, &r.IsApproved, &r.HelpfulVotes, &r.CreatedAt)
	if err == gocql.ErrNotFound {
		return models.Review{}, ErrNotFound
	}
	return r, err
}

func (s *Scylla) ListReviewsByProduct(ctx context.Context, productID gocql.UUID, approvedOnly bool) ([]models.Review, error) {
	iter := s.Catalog.Query(`SELECT review_id, user_id, user_name, overall_rating, eco_impact_rating,
			value_for_money, build_quality, title, comment, would_recommend,
			is_verified_purchase, is_approved, helpful_votes, created_at
		FROM reviews_by_product WHERE product_id = ?`, productID).WithContext(ctx).Iter()
	var out []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.UserID, &r.UserName, &r.OverallRating, &r.EcoImpactRating,
		&r.ValueForMoney, &r.BuildQuality, &r.Title, &r.Comment, &r.WouldRecommend,
		&r.IsVerifiedPurchase, &r.IsApproved, &r.HelpfulVotes, &r.CreatedAt) {
		r.ProductID = productID
		if !approvedOnly || r.IsApproved {
			out = append(out, r)
		}
		r = models.Review{}
	}
	return out, iter.Close()
}

func (s *Scylla) SetReviewApproved(ctx context.Context, reviewID gocql.UUID) error {
	productID, userID, err := s.reviewLocation(ctx, reviewID)
	if err != nil {
		return err
	}
	return s.Catalog.Query(`UPDATE reviews_by_product SET is_approved = true WHERE product_id = ? AND user_id = ?`,
		productID, userID).WithContext(ctx).Exec()
}

func (s *Scylla) SetReviewVerified(ctx context.Context, reviewID gocql.UUID) error {
	productID, userID, err := s.reviewLocation(ctx, reviewID)
	if err != nil {
		return err
	}
	return s.Catalog.Query(`UPDATE reviews_by_product SET is_verified_purchase = true WHERE product_id = ? AND user_id = ?`,
		productID, userID).WithContext(ctx).Exec()
}

func (s *Scylla) IncrementHelpfulVotes(ctx context.Context, reviewID gocql.UUID) (int, error) {
	productID, userID, err := s.reviewLocation(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	for i := 0; i < casMaxRetries; i++ {
		var current int
		err := s.Catalog.Query(`SELECT helpful_votes FROM reviews_by_product WHERE product_id = ? AND user_id = ?`,
			productID, userID).WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		applied, err := s.Catalog.Query(
			`UPDATE reviews_by_product SET helpful_votes = ? WHERE product_id = ? AND user_id = ? IF helpful_votes = ?`,
			current+1, productID, userID, current).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return 0, err
		}
		if applied {
			return current + 1, nil
		}
	}
	return 0, fmt.Errorf("helpful_votes: trop de contention pour %s", reviewID)
}

// --- Vendeurs ---

func (s *Scylla) CreateVendorWithRole(ctx context.Context, v models.Vendor) error {
	// 1. réservation LWT : un seul profil vendeur par utilisateur
	applied, err := s.Users.Query(`INSERT INTO vendors_by_user (user_id, vendor_id) VALUES (?, ?) IF NOT EXISTS`,
		v.UserID, v.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrAlreadyVendor
	}

	// 2. profil + bascule du rôle dans un même batch loggé (même keyspace)
	now := time.Now()
	batch := s.Users.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO vendors (vendor_id, user_id, company_name, business_license, tax_id,
			business_address, contact_phone, website, description, verification_status,
			sustainability_certificate_url, verification_documents_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.CompanyName, v.BusinessLicense, v.TaxID, v.BusinessAddress,
		v.ContactPhone, v.Website, v.Description, v.VerificationStatus,
		v.SustainabilityCertURL, v.VerificationDocumentsURL, v.IsActive, now, now)
	batch.Query(`UPDATE users SET role = ?, updated_at = ? WHERE user_id = ?`,
		models.RoleVendor, now, v.UserID)
	if err := s.Users.ExecuteBatch(batch); err != nil {
		// compensation : on libère la réservation
		_ = s.Users.Query(`DELETE FROM vendors_by_user WHERE user_id = ?`, v.UserID).Exec()
		return err
	}
	return nil
}

const vendorColumns = `vendor_id, user_id, company_name, business_license, tax_id, business_address,
	contact_phone, website, description, verification_status, sustainability_certificate_url,
	verification_documents_url, is_active, created_at, updated_at`

func scanVendor(scan func(...interface{}) error) (models.Vendor, error) {
	var v models.Vendor
	err := scan(&v.ID, &v.UserID, &v.CompanyName, &v.BusinessLicense, &v.TaxID, &v.BusinessAddress,
		&v.ContactPhone, &v.Website, &v.Description, &v.VerificationStatus,
		&v.SustainabilityCertURL, &v.VerificationDocumentsURL, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Scylla) GetVendor(ctx context.Context, vendorID gocql.UUID) (models.Vendor, error) {
	q := s.Users.Query(`SELECT `+vendorColumns+` FROM vendors WHERE vendor_id = ?`, vendorID).WithContext(ctx)
	v, err := scanVendor(q.Scan)
	if err == gocql.ErrNotFound {
		return models.Vendor{}, ErrNotFound
	}
	return v, err
}

func (s *Scylla) GetVendorByUser(ctx context.Context, userID string) (models.Vendor, error) {
	var vendorID gocql.UUID
	err := s.Users.Query(`SELECT vendor_id FROM vendors_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Scan(&vendorID)
	if err == gocql.ErrNotFound {
		return models.Vendor{}, ErrNotFound
	}
	if err != nil {
		return models.Vendor{}, err
	}
	return s.GetVendor(ctx, vendorID)
}

func (s *Scylla) ListVendors(ctx context.Context, status string) ([]models.Vendor, error) {
	iter := s.Users.Query(`SELECT ` + vendorColumns + ` FROM vendors`).WithContext(ctx).Iter()
	var out []models.Vendor
	for {
		v, err := scanVendor(func(dest ...interface{}) error {
			if !iter.Scan(dest...) {
				return gocql.ErrNotFound
			}
			return nil
		})
		if err != nil {
			break
		}
		if !v.IsActive {
			continue
		}
		if status != "" && v.VerificationStatus != status {
			continue
		}
		out = append(out, v)
	}
	return out, iter.Close()
}

func (s *Scylla) UpdateVendorStatus(ctx context.Context, vendorID gocql.UUID, status string) error {
	return s.Users.Query(`UPDATE vendors SET verification_status = ?, updated_at = ? WHERE vendor_id = ?`,
		status, time.Now(), vendorID).WithContext(ctx).Exec()
}

func (s *Scylla) SetVendorDocuments(ctx context.Context, vendorID gocql.UUID, certURL, docsURL string) error {
	if certURL != "" {
		if err := s.Users.Query(`UPDATE vendors SET sustainability_certificate_url = ?, updated_at = ? WHERE vendor_id = ?`,
			certURL, time.Now(), vendorID).WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	if docsURL != "" {
		if err := s.Users.Query(`UPDATE vendors SET verification_documents_url = ?, updated_at = ? WHERE vendor_id = ?`,
			docsURL, time.Now(), vendorID).WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	return nil
}

// --- Audit ---

func (s *Scylla) RecordAudit(ctx context.Context, e models.AuditEntry) error {
	return s.Users.Query(`INSERT INTO audit_log (id, actor_id, action, target_type, target_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, e.Action, e.TargetType, e.TargetID, e.Details, e.CreatedAt).
		WithContext(ctx).Exec()
}

func (s *Scylla) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	iter := s.Users.Query(`SELECT id, actor_id, action, target_type, target_id, details, created_at
		FROM audit_log LIMIT ?`, limit).WithContext(ctx).Iter()
	var out []models.AuditEntry
	var e models.AuditEntry
	for iter.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Details, &e.CreatedAt) {
		out = append(out, e)
	}
	return out, iter.Close()
}
