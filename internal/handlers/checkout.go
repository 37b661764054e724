package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"
	"ecohub_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

//
// 🧾 POST /api/checkout
//
// Transforme le panier en commande : réservation du stock, montants
// figés, panier vidé. Le paiement Stripe arrive ensuite sur la
// commande "pending".
func Checkout(c *gin.Context) {
	userID := c.GetString("user_id")

	var shipping models.ShippingInfo
	if err := c.ShouldBindJSON(&shipping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison incomplète"})
		return
	}

	order, err := services.Default.Checkout.PlaceOrder(c.Request.Context(), userID, shipping)
	switch {
	case errors.Is(err, store.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	case errors.Is(err, store.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant: " + err.Error()})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "Un produit du panier n'est plus disponible"})
		return
	case err != nil:
		log.Printf("❌ Checkout échoué pour %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la commande"})
		return
	}

	// Le carbon offset cumulé a changé
	cache.InvalidateUser(userID)
	notifyCart(userID, "cleared")

	// Email de confirmation hors du chemin de réponse
	go func(o models.Order, uid string) {
		user, err := services.Default.Store.GetUser(context.Background(), uid)
		if err != nil {
			return
		}
		if err := utils.SendOrderConfirmationEmail(o, user.Email); err != nil {
			log.Printf("⚠️ Email de confirmation non envoyé pour %s: %v", o.OrderNumber, err)
		}
	}(order, userID)

	log.Printf("🧾 Commande %s créée pour %s (%.2f €)", order.OrderNumber, userID, order.Total)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}
