package services

import (
	"context"
	"log"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
)

// VendorService gère l'onboarding vendeur et son cycle de vie.
//
// Machine à états du statut (seul un admin déclenche une transition) :
//
//	pending   → verified | rejected
//	verified  → suspended
//	suspended → verified
//
// rejected est terminal. Une transition vers le statut courant est un no-op.
type VendorService struct {
	store store.Store
}

func NewVendorService(st store.Store) *VendorService {
	return &VendorService{store: st}
}

var vendorTransitions = map[string][]string{
	models.VendorStatusPending:   {models.VendorStatusVerified, models.VendorStatusRejected},
	models.VendorStatusVerified:  {models.VendorStatusSuspended},
	models.VendorStatusSuspended: {models.VendorStatusVerified},
}

func vendorTransitionAllowed(from, to string) bool {
	for _, s := range vendorTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Apply crée le profil vendeur en "pending" et passe le rôle de
// l'utilisateur à "vendor", atomiquement (les deux ou aucun).
// ErrAlreadyVendor si un profil existe déjà pour cet utilisateur.
func (s *VendorService) Apply(ctx context.Context, userID string, app models.VendorApplication) (models.Vendor, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.Vendor{}, err
	}

	now := time.Now()
	vendor := models.Vendor{
		ID:                 gocql.TimeUUID(),
		UserID:             userID,
		CompanyName:        app.CompanyName,
		BusinessLicense:    app.BusinessLicense,
		TaxID:              app.TaxID,
		BusinessAddress:    app.BusinessAddress,
		ContactPhone:       app.ContactPhone,
		Website:            app.Website,
		Description:        app.Description,
		VerificationStatus: models.VendorStatusPending,
		IsActive:           true,
		CreatedAt:          &now,
		UpdatedAt:          &now,
	}

	if err := s.store.CreateVendorWithRole(ctx, vendor); err != nil {
		return models.Vendor{}, err
	}
	log.Printf("🏪 Candidature vendeur de %s (%s)", userID, app.CompanyName)
	return vendor, nil
}

// MyVendor retourne le profil vendeur de l'utilisateur connecté
func (s *VendorService) MyVendor(ctx context.Context, userID string) (models.Vendor, error) {
	return s.store.GetVendorByUser(ctx, userID)
}

// List retourne les vendeurs, filtrés par statut si non vide
func (s *VendorService) List(ctx context.Context, status string) ([]models.Vendor, error) {
	return s.store.ListVendors(ctx, status)
}

// SetStatus applique une transition de statut (admin seulement).
//   - statut cible identique   → no-op, profil inchangé
//   - transition hors machine  → ErrInvalidTransition
//
// Chaque transition effective est journalisée dans l'audit.
func (s *VendorService) SetStatus(ctx context.Context, actorID, actorRole string, vendorID gocql.UUID, status string) (models.Vendor, error) {
	if actorRole != models.RoleAdmin {
		return models.Vendor{}, store.ErrUnauthorized
	}

	vendor, err := s.store.GetVendor(ctx, vendorID)
	if err != nil {
		return models.Vendor{}, err
	}
	if vendor.VerificationStatus == status {
		return vendor, nil
	}
	if !vendorTransitionAllowed(vendor.VerificationStatus, status) {
		return models.Vendor{}, store.ErrInvalidTransition
	}

	if err := s.store.UpdateVendorStatus(ctx, vendorID, status); err != nil {
		return models.Vendor{}, err
	}

	audit := models.AuditEntry{
		ID:         gocql.TimeUUID(),
		ActorID:    actorID,
		Action:     "vendor.status_change",
		TargetType: "vendor",
		TargetID:   vendorID.String(),
		Details:    vendor.VerificationStatus + " -> " + status,
		CreatedAt:  time.Now(),
	}
	if err := s.store.RecordAudit(ctx, audit); err != nil {
		log.Printf("⚠️ Audit non enregistré pour %s: %v", vendorID, err)
	}

	log.Printf("🔄 Vendeur %s: %s -> %s", vendor.CompanyName, vendor.VerificationStatus, status)
	vendor.VerificationStatus = status
	now := time.Now()
	vendor.UpdatedAt = &now
	return vendor, nil
}
