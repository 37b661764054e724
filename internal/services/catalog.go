package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
)

// CatalogService : lecture publique du catalogue et gestion des produits
// par leurs vendeurs. Seuls les vendeurs vérifiés publient.
type CatalogService struct {
	store store.Store
}

func NewCatalogService(st store.Store) *CatalogService {
	return &CatalogService{store: st}
}

// ProductInput est le corps de création / mise à jour d'un produit
type ProductInput struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	CategoryID      string   `json:"category_id" binding:"required"`
	Price           float64  `json:"price" binding:"required"`
	DiscountedPrice *float64 `json:"discounted_price"`
	Stock           int      `json:"stock"`

	EnergyEfficiencyRating string  `json:"energy_efficiency_rating"`
	CarbonFootprint        float64 `json:"carbon_footprint"`
	EnergyConsumption      float64 `json:"energy_consumption"`
	RecyclablePercentage   int     `json:"recyclable_percentage"`
	Certifications         string  `json:"certifications"`

	WarrantyYears     int      `json:"warranty_years"`
	ImageURLs         []string `json:"image_urls"`
	LowStockThreshold int      `json:"low_stock_threshold"`
	IsFeatured        bool     `json:"is_featured"`
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

var slugAccents = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
)

// slugify : "Lampe Solaire Étanche" -> "lampe-solaire-etanche"
func slugify(name string) string {
	s := slugAccents.Replace(strings.ToLower(name))
	s = slugCleanup.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// List retourne les produits actifs correspondant aux filtres
func (s *CatalogService) List(ctx context.Context, f store.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, f)
}

// Get retourne un produit actif par id. Les produits désactivés
// n'existent pas pour le public.
func (s *CatalogService) Get(ctx context.Context, id gocql.UUID) (models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if !p.IsActive {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

// GetBySlug : même contrat que Get, par slug
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	p, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return models.Product{}, err
	}
	if !p.IsActive {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

// Categories liste l'arborescence des catégories
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory (admin seulement)
func (s *CatalogService) CreateCategory(ctx context.Context, actorRole, name, description, icon string, parentID *gocql.UUID) (models.Category, error) {
	if actorRole != models.RoleAdmin {
		return models.Category{}, store.ErrUnauthorized
	}
	now := time.Now()
	cat := models.Category{
		ID:          gocql.TimeUUID(),
		Name:        name,
		Slug:        slugify(name),
		Description: description,
		Icon:        icon,
		ParentID:    parentID,
		CreatedAt:   &now,
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return models.Category{}, err
	}
	return cat, nil
}

// verifiedVendor résout le profil vendeur de l'utilisateur et vérifie
// qu'il a le droit de publier. ErrUnauthorized sinon.
func (s *CatalogService) verifiedVendor(ctx context.Context, userID string) (models.Vendor, error) {
	vendor, err := s.store.GetVendorByUser(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return models.Vendor{}, store.ErrUnauthorized
		}
		return models.Vendor{}, err
	}
	if !vendor.IsVerified() || !vendor.IsActive {
		return models.Vendor{}, store.ErrUnauthorized
	}
	return vendor, nil
}

// CreateProduct publie un produit au nom du vendeur de l'utilisateur.
// Réservé aux vendeurs vérifiés.
func (s *CatalogService) CreateProduct(ctx context.Context, userID string, in ProductInput) (models.Product, error) {
	vendor, err := s.verifiedVendor(ctx, userID)
	if err != nil {
		return models.Product{}, err
	}

	catID, err := gocql.ParseUUID(in.CategoryID)
	if err != nil {
		return models.Product{}, store.ErrNotFound
	}

	now := time.Now()
	p := models.Product{
		ID:                     gocql.TimeUUID(),
		VendorID:               vendor.ID,
		CategoryID:             catID,
		Name:                   in.Name,
		Slug:                   slugify(in.Name),
		Description:            in.Description,
		Price:                  round2(in.Price),
		DiscountedPrice:        in.DiscountedPrice,
		Stock:                  in.Stock,
		EnergyEfficiencyRating: in.EnergyEfficiencyRating,
		CarbonFootprint:        in.CarbonFootprint,
		EnergyConsumption:      in.EnergyConsumption,
		RecyclablePercentage:   in.RecyclablePercentage,
		Certifications:         in.Certifications,
		WarrantyYears:          in.WarrantyYears,
		ImageURLs:              in.ImageURLs,
		LowStockThreshold:      in.LowStockThreshold,
		IsFeatured:             in.IsFeatured,
		IsActive:               true,
		CreatedAt:              &now,
		UpdatedAt:              &now,
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return models.Product{}, err
	}
	log.Printf("📦 Produit %s publié par %s", p.Name, vendor.CompanyName)
	return p, nil
}

// UpdateProduct modifie un produit du vendeur de l'utilisateur.
// Le stock ne se modifie pas ici : il passe par Restock et le checkout.
func (s *CatalogService) UpdateProduct(ctx context.Context, userID string, productID gocql.UUID, in ProductInput) (models.Product, error) {
	vendor, err := s.verifiedVendor(ctx, userID)
	if err != nil {
		return models.Product{}, err
	}
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if p.VendorID != vendor.ID {
		return models.Product{}, store.ErrUnauthorized
	}

	catID, err := gocql.ParseUUID(in.CategoryID)
	if err != nil {
		return models.Product{}, store.ErrNotFound
	}

	now := time.Now()
	p.Name = in.Name
	p.Slug = slugify(in.Name)
	p.Description = in.Description
	p.CategoryID = catID
	p.Price = round2(in.Price)
	p.DiscountedPrice = in.DiscountedPrice
	p.EnergyEfficiencyRating = in.EnergyEfficiencyRating
	p.CarbonFootprint = in.CarbonFootprint
	p.EnergyConsumption = in.EnergyConsumption
	p.RecyclablePercentage = in.RecyclablePercentage
	p.Certifications = in.Certifications
	p.WarrantyYears = in.WarrantyYears
	p.ImageURLs = in.ImageURLs
	p.LowStockThreshold = in.LowStockThreshold
	p.IsFeatured = in.IsFeatured
	p.UpdatedAt = &now

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeactivateProduct retire un produit de la vente (soft delete).
// Le propriétaire ou un admin.
func (s *CatalogService) DeactivateProduct(ctx context.Context, userID, actorRole string, productID gocql.UUID) error {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin {
		vendor, err := s.verifiedVendor(ctx, userID)
		if err != nil {
			return err
		}
		if p.VendorID != vendor.ID {
			return store.ErrUnauthorized
		}
	}
	p.IsActive = false
	now := time.Now()
	p.UpdatedAt = &now
	return s.store.UpdateProduct(ctx, p)
}

// Restock ajoute du stock (vendeur propriétaire ou admin) et trace le
// mouvement. Les alertes ouvertes couvertes par le réassort sont résolues.
func (s *CatalogService) Restock(ctx context.Context, userID, actorRole string, productID gocql.UUID, qty int, reason string) (models.Product, error) {
	if qty <= 0 {
		return models.Product{}, store.ErrInvalidQuantity
	}
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if actorRole != models.RoleAdmin {
		vendor, err := s.verifiedVendor(ctx, userID)
		if err != nil {
			return models.Product{}, err
		}
		if p.VendorID != vendor.ID {
			return models.Product{}, store.ErrUnauthorized
		}
	}

	if err := s.store.IncrementStock(ctx, productID, qty); err != nil {
		return models.Product{}, err
	}

	updated, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		updated = p
		updated.Stock = p.Stock + qty
	}

	mv := models.StockMovement{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Type:      "restock",
		Quantity:  qty,
		PrevStock: updated.Stock - qty,
		NewStock:  updated.Stock,
		Reason:    reason,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.store.RecordStockMovement(ctx, mv); err != nil {
		log.Printf("⚠️ Mouvement de stock non enregistré pour %s: %v", productID, err)
	}

	s.resolveAlerts(ctx, updated)

	log.Printf("📈 Réassort de %s: +%d (stock %d)", updated.Name, qty, updated.Stock)
	return updated, nil
}

func (s *CatalogService) resolveAlerts(ctx context.Context, p models.Product) {
	threshold := p.LowStockThreshold
	if threshold == 0 {
		threshold = 10
	}
	if p.Stock <= threshold {
		return
	}
	alerts, err := s.store.ListOpenStockAlerts(ctx)
	if err != nil {
		return
	}
	for _, a := range alerts {
		if a.ProductID == p.ID {
			if err := s.store.ResolveStockAlert(ctx, a.ID); err != nil {
				log.Printf("⚠️ Alerte %s non résolue: %v", a.ID, err)
			}
		}
	}
}

// StockAlerts liste les alertes ouvertes (admin seulement)
func (s *CatalogService) StockAlerts(ctx context.Context, actorRole string) ([]models.StockAlert, error) {
	if actorRole != models.RoleAdmin {
		return nil, store.ErrUnauthorized
	}
	return s.store.ListOpenStockAlerts(ctx)
}
