package product

import (
	"errors"
	"log"
	"net/http"

	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/products/:id/reviews
//
// Un seul avis par utilisateur et par produit. L'avis entre en file de
// modération et n'est visible qu'une fois approuvé.
func SubmitReview(c *gin.Context) {
	userID := c.GetString("user_id")
	userName := c.GetString("name")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données avis invalides"})
		return
	}

	review, err := services.Default.Reviews.Submit(c.Request.Context(), userID, userName, productID, input)
	switch {
	case errors.Is(err, store.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les notes doivent être entre 1 et 5"})
		return
	case errors.Is(err, store.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà laissé un avis sur ce produit"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement avis"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Avis soumis, en attente de modération",
		"review":  review,
	})
}

//
// 🔵 GET /api/products/:id/reviews
//
func ListReviews(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	reviews, err := services.Default.Reviews.ListApproved(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération avis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

//
// 🔵 GET /api/products/:id/reviews/summary
//
func ReviewSummary(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	summary, err := services.Default.Reviews.Summary(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul des moyennes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

//
// 🟢 POST /api/reviews/:review_id/helpful
//
func MarkReviewHelpful(c *gin.Context) {
	reviewID, err := gocql.ParseUUID(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	votes, err := services.Default.Reviews.MarkHelpful(c.Request.Context(), reviewID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"helpful_votes": votes})
}

//
// 🔵 GET /api/admin/products/:id/reviews/pending
//
func ListPendingReviews(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	reviews, err := services.Default.Reviews.ListPending(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération avis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

//
// 🟡 PUT /api/admin/reviews/:review_id/approve
//
func ApproveReview(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	reviewID, err := gocql.ParseUUID(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	review, err := services.Default.Reviews.Approve(c.Request.Context(), userID, role, reviewID)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Réservé aux administrateurs"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur approbation avis"})
		return
	}

	log.Printf("✅ Avis %s approuvé par %s", reviewID, userID)
	c.JSON(http.StatusOK, gin.H{"review": review})
}

//
// 🟡 PUT /api/admin/reviews/:review_id/verify
//
// Badge "achat vérifié" posé manuellement (achats hors plateforme)
func VerifyReviewPurchase(c *gin.Context) {
	role := c.GetString("role")

	reviewID, err := gocql.ParseUUID(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	review, err := services.Default.Reviews.VerifyPurchase(c.Request.Context(), role, reviewID)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Réservé aux administrateurs"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour avis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}
