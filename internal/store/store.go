package store

import (
	"context"

	"ecohub_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ProductFilter : filtres de la liste catalogue
type ProductFilter struct {
	CategorySlug  string
	Search        string
	Certification string
	EnergyRating  string
	FeaturedOnly  bool
	VendorID      *gocql.UUID
	Limit         int
}

// Store est la frontière de persistance du marché.
//
// Les compteurs partagés (stock, carbon_offset, helpful_votes) passent par
// des primitives atomiques côté store, jamais de read-modify-write dans
// les services. L'implémentation ScyllaDB s'appuie sur des LWT
// (compare-and-swap par ligne), l'implémentation mémoire sur un mutex.
type Store interface {
	// --- Utilisateurs ---
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUserProfile(ctx context.Context, u models.User) error
	SetUserPassword(ctx context.Context, userID, passwordHash string) error
	// AddCarbonOffset incrémente atomiquement le compteur cumulé de l'utilisateur
	AddCarbonOffset(ctx context.Context, userID string, delta float64) error

	// --- Catalogue ---
	CreateCategory(ctx context.Context, cat models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (models.Category, error)
	CreateProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error
	GetProduct(ctx context.Context, id gocql.UUID) (models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)

	// DecrementStock décrémente si et seulement si le stock restant suffit
	// (conditionnel, atomique) ; ErrOutOfStock sinon. IncrementStock est la
	// compensation utilisée par la saga du checkout et l'annulation.
	DecrementStock(ctx context.Context, id gocql.UUID, qty int) error
	IncrementStock(ctx context.Context, id gocql.UUID, qty int) error
	RecordStockMovement(ctx context.Context, m models.StockMovement) error
	CreateStockAlert(ctx context.Context, a models.StockAlert) error
	ListOpenStockAlerts(ctx context.Context) ([]models.StockAlert, error)
	ResolveStockAlert(ctx context.Context, id gocql.UUID) error

	// --- Panier (un par utilisateur, créé paresseusement) ---
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	SaveCart(ctx context.Context, cart models.Cart) error
	ClearCart(ctx context.Context, userID string) error

	// --- Commandes ---
	// InsertOrder persiste l'entête et les items en une seule écriture.
	InsertOrder(ctx context.Context, o models.Order) error
	// DeleteOrder ne sert qu'à la compensation de la saga du checkout.
	DeleteOrder(ctx context.Context, orderNumber string) error
	GetOrder(ctx context.Context, orderNumber string) (models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	// TransitionOrderStatus passe la commande de `from` à `to` si et
	// seulement si son statut courant est `from` (compare-and-swap par
	// ligne). Retourne false sans erreur quand le statut a bougé entre
	// temps : les effets secondaires (restitution de stock, emails) ne
	// doivent s'exécuter que si la transition a été appliquée.
	TransitionOrderStatus(ctx context.Context, orderNumber, from, to string) (bool, error)
	SetOrderPaymentIntent(ctx context.Context, orderNumber, paymentIntentID string) error
	UserHasPurchased(ctx context.Context, userID string, productID gocql.UUID) (bool, error)

	// --- Avis ---
	// InsertReview échoue avec ErrDuplicateReview si (produit, utilisateur) existe.
	InsertReview(ctx context.Context, r models.Review) error
	GetReview(ctx context.Context, reviewID gocql.UUID) (models.Review, error)
	ListReviewsByProduct(ctx context.Context, productID gocql.UUID, approvedOnly bool) ([]models.Review, error)
	SetReviewApproved(ctx context.Context, reviewID gocql.UUID) error
	SetReviewVerified(ctx context.Context, reviewID gocql.UUID) error
	IncrementHelpfulVotes(ctx context.Context, reviewID gocql.UUID) (int, error)

	// --- Vendeurs ---
	// CreateVendorWithRole crée le profil vendeur ET passe le rôle de
	// l'utilisateur à "vendor" : les deux écritures réussissent ensemble
	// ou aucune. ErrAlreadyVendor si l'utilisateur a déjà un profil.
	CreateVendorWithRole(ctx context.Context, v models.Vendor) error
	GetVendor(ctx context.Context, vendorID gocql.UUID) (models.Vendor, error)
	GetVendorByUser(ctx context.Context, userID string) (models.Vendor, error)
	ListVendors(ctx context.Context, status string) ([]models.Vendor, error)
	UpdateVendorStatus(ctx context.Context, vendorID gocql.UUID, status string) error
	// SetVendorDocuments rattache les justificatifs uploadés (certificat
	// de durabilité, documents de vérification) au profil vendeur.
	// Une URL vide laisse le champ existant inchangé.
	SetVendorDocuments(ctx context.Context, vendorID gocql.UUID, certURL, docsURL string) error

	// --- Audit ---
	RecordAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}
