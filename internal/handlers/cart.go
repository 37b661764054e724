package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"ecohub_back_end/internal/database"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// notifyCart pousse une notification sur le canal Redis du user, les
// clients WebSocket abonnés rechargent leur panier à la réception
func notifyCart(userID, event string) {
	if database.Redis == nil {
		return
	}
	if err := database.Redis.Publish(context.Background(), "cart:"+userID, event).Err(); err != nil {
		log.Printf("⚠️ Notification panier non publiée pour %s: %v", userID, err)
	}
}

func cartResponse(cart models.Cart) gin.H {
	return gin.H{
		"items": cart.Items,
		"total": cart.TotalPrice(),
		"count": len(cart.Items),
	}
}

//
// 🔵 GET /api/cart
//
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := services.Default.Cart.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

//
// 🛒 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id requis"})
		return
	}
	productID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id invalide"})
		return
	}

	cart, err := services.Default.Cart.AddItem(c.Request.Context(), userID, productID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case errors.Is(err, store.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Produit en rupture de stock"})
		return
	case errors.Is(err, store.ErrQuantityExceedsStock):
		// Plafond atteint : le panier est rendu tel quel, avec un avertissement
		resp := cartResponse(cart)
		resp["warning"] = "Quantité maximale atteinte pour ce produit"
		c.JSON(http.StatusOK, resp)
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}

	log.Printf("🛒 Produit %s ajouté au panier de %s", input.ProductID, userID)
	notifyCart(userID, "updated")
	c.JSON(http.StatusOK, cartResponse(cart))
}

//
// 🟡 PUT /api/cart/quantity
//
func UpdateCartQuantity(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	productID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id invalide"})
		return
	}

	cart, err := services.Default.Cart.SetQuantity(c.Request.Context(), userID, productID, input.Quantity)
	switch {
	case errors.Is(err, store.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	case errors.Is(err, store.ErrQuantityExceedsStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Quantité supérieure au stock disponible"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	notifyCart(userID, "updated")
	c.JSON(http.StatusOK, cartResponse(cart))
}

//
// 🔴 DELETE /api/cart/item/:product_id
//
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err := gocql.ParseUUID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id invalide"})
		return
	}

	cart, err := services.Default.Cart.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression article"})
		return
	}

	notifyCart(userID, "updated")
	c.JSON(http.StatusOK, cartResponse(cart))
}

//
// 🔴 DELETE /api/cart
//
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := services.Default.Store.ClearCart(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	notifyCart(userID, "cleared")
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
