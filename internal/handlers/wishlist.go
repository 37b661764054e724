package handlers

import (
	"net/http"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🔵 GET /api/wishlist
//
// La wishlist vit dans un set Redis, les produits sont hydratés depuis
// le catalogue. Les produits désactivés entre-temps sont filtrés.
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	ids, err := cache.GetWishlist(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération wishlist"})
		return
	}

	ctx := c.Request.Context()
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		pid, err := gocql.ParseUUID(id)
		if err != nil {
			continue
		}
		p, err := services.Default.Catalog.Get(ctx, pid)
		if err != nil {
			continue
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

//
// 🟢 POST /api/wishlist/:product_id
//
func AddToWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err := gocql.ParseUUID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id invalide"})
		return
	}

	// Seuls les produits actifs peuvent être ajoutés
	if _, err := services.Default.Catalog.Get(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if cache.IsInWishlist(userID, productID.String()) {
		c.JSON(http.StatusOK, gin.H{"message": "Produit déjà dans la wishlist"})
		return
	}

	if err := cache.AddToWishlist(userID, productID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté à la wishlist"})
}

//
// 🔴 DELETE /api/wishlist/:product_id
//
func RemoveFromWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := cache.RemoveFromWishlist(userID, c.Param("product_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré de la wishlist"})
}
