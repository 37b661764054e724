package services

import (
	"context"
	"log"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"

	"github.com/gocql/gocql"
)

// ReviewService : un avis par couple (utilisateur, produit), modéré avant
// publication. Les moyennes ne comptent que les avis approuvés.
type ReviewService struct {
	store store.Store
}

func NewReviewService(st store.Store) *ReviewService {
	return &ReviewService{store: st}
}

// ReviewInput est le corps de soumission d'un avis
type ReviewInput struct {
	OverallRating   int    `json:"overall_rating" binding:"required"`
	EcoImpactRating int    `json:"eco_impact_rating" binding:"required"`
	ValueForMoney   int    `json:"value_for_money" binding:"required"`
	BuildQuality    int    `json:"build_quality" binding:"required"`
	Title           string `json:"title"`
	Comment         string `json:"comment"`
	WouldRecommend  bool   `json:"would_recommend"`
}

func validRating(n int) bool { return n >= 1 && n <= 5 }

// Submit enregistre un avis non approuvé.
//   - une des quatre notes hors [1,5]   → ErrInvalidRating
//   - produit inconnu ou inactif        → ErrNotFound
//   - avis déjà déposé sur ce produit   → ErrDuplicateReview
//
// Le badge "achat vérifié" est calculé ici, d'après l'historique de
// commandes, jamais déclaré par le client.
func (s *ReviewService) Submit(ctx context.Context, userID, userName string, productID gocql.UUID, in ReviewInput) (models.Review, error) {
	if !validRating(in.OverallRating) || !validRating(in.EcoImpactRating) ||
		!validRating(in.ValueForMoney) || !validRating(in.BuildQuality) {
		return models.Review{}, store.ErrInvalidRating
	}

	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return models.Review{}, err
	}
	if !p.IsActive {
		return models.Review{}, store.ErrNotFound
	}

	purchased, err := s.store.UserHasPurchased(ctx, userID, productID)
	if err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		ID:                 gocql.TimeUUID(),
		ProductID:          productID,
		UserID:             userID,
		UserName:           userName,
		OverallRating:      in.OverallRating,
		EcoImpactRating:    in.EcoImpactRating,
		ValueForMoney:      in.ValueForMoney,
		BuildQuality:       in.BuildQuality,
		Title:              in.Title,
		Comment:            in.Comment,
		WouldRecommend:     in.WouldRecommend,
		IsVerifiedPurchase: purchased,
		IsApproved:         false,
		CreatedAt:          time.Now(),
	}

	if err := s.store.InsertReview(ctx, review); err != nil {
		return models.Review{}, err
	}
	log.Printf("📝 Avis déposé sur %s par %s (vérifié: %v)", p.Name, userID, purchased)
	return review, nil
}

// ListApproved : les avis visibles publiquement sur la fiche produit
func (s *ReviewService) ListApproved(ctx context.Context, productID gocql.UUID) ([]models.Review, error) {
	return s.store.ListReviewsByProduct(ctx, productID, true)
}

// ListPending : file de modération d'un produit
func (s *ReviewService) ListPending(ctx context.Context, productID gocql.UUID) ([]models.Review, error) {
	all, err := s.store.ListReviewsByProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Review, 0)
	for _, r := range all {
		if !r.IsApproved {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// Summary agrège les avis approuvés d'un produit. Sans avis approuvé,
// la forme reste la même avec tout à zéro.
func (s *ReviewService) Summary(ctx context.Context, productID gocql.UUID) (models.RatingSummary, error) {
	reviews, err := s.store.ListReviewsByProduct(ctx, productID, true)
	if err != nil {
		return models.RatingSummary{}, err
	}
	summary := models.RatingSummary{TotalReviews: len(reviews)}
	if len(reviews) == 0 {
		return summary, nil
	}
	for _, r := range reviews {
		summary.Overall += float64(r.OverallRating)
		summary.EcoImpact += float64(r.EcoImpactRating)
		summary.ValueForMoney += float64(r.ValueForMoney)
		summary.BuildQuality += float64(r.BuildQuality)
	}
	n := float64(len(reviews))
	summary.Overall = round2(summary.Overall / n)
	summary.EcoImpact = round2(summary.EcoImpact / n)
	summary.ValueForMoney = round2(summary.ValueForMoney / n)
	summary.BuildQuality = round2(summary.BuildQuality / n)
	return summary, nil
}

// MarkHelpful incrémente atomiquement le compteur "utile" et retourne
// la nouvelle valeur. Pas de déduplication par votant.
func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID gocql.UUID) (int, error) {
	return s.store.IncrementHelpfulVotes(ctx, reviewID)
}

// Approve publie un avis (admin seulement). Idempotent.
func (s *ReviewService) Approve(ctx context.Context, actorID, actorRole string, reviewID gocql.UUID) (models.Review, error) {
	if actorRole != models.RoleAdmin {
		return models.Review{}, store.ErrUnauthorized
	}
	r, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return models.Review{}, err
	}
	if r.IsApproved {
		return r, nil
	}
	if err := s.store.SetReviewApproved(ctx, reviewID); err != nil {
		return models.Review{}, err
	}
	r.IsApproved = true

	audit := models.AuditEntry{
		ID:         gocql.TimeUUID(),
		ActorID:    actorID,
		Action:     "review.approve",
		TargetType: "review",
		TargetID:   reviewID.String(),
		CreatedAt:  time.Now(),
	}
	if err := s.store.RecordAudit(ctx, audit); err != nil {
		log.Printf("⚠️ Audit non enregistré pour %s: %v", reviewID, err)
	}

	log.Printf("✅ Avis %s approuvé", reviewID)
	return r, nil
}

// VerifyPurchase pose manuellement le badge "achat vérifié" sur un
// avis (admin seulement, pour les achats hors plateforme). Idempotent.
func (s *ReviewService) VerifyPurchase(ctx context.Context, actorRole string, reviewID gocql.UUID) (models.Review, error) {
	if actorRole != models.RoleAdmin {
		return models.Review{}, store.ErrUnauthorized
	}
	r, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return models.Review{}, err
	}
	if r.IsVerifiedPurchase {
		return r, nil
	}
	if err := s.store.SetReviewVerified(ctx, reviewID); err != nil {
		return models.Review{}, err
	}
	r.IsVerifiedPurchase = true
	return r, nil
}
