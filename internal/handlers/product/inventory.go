package product

import (
	"errors"
	"log"
	"net/http"

	"ecohub_back_end/internal/service"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/vendor/products/:id/restock
//
// Réassort par le vendeur propriétaire (ou un admin). Trace un
// mouvement de stock et résout les alertes ouvertes.
func RestockProduct(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input struct {
		Quantity int    `json:"quantity" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity requis"})
		return
	}

	p, err := services.Default.Catalog.Restock(c.Request.Context(), userID, role, productID, input.Quantity, input.Reason)
	switch {
	case errors.Is(err, store.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Produit d'un autre vendeur"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réassort"})
		return
	}

	go service.IndexProduct(p)

	log.Printf("📦 Réassort %s: +%d (stock %d)", p.Name, input.Quantity, p.Stock)
	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// 🔵 GET /api/admin/stock-alerts
//
func ListStockAlerts(c *gin.Context) {
	role := c.GetString("role")

	alerts, err := services.Default.Catalog.StockAlerts(c.Request.Context(), role)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Réservé aux administrateurs"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération alertes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

//
// 🟡 PUT /api/admin/stock-alerts/:alert_id/resolve
//
func ResolveStockAlert(c *gin.Context) {
	alertID, err := gocql.ParseUUID(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	if err := services.Default.Store.ResolveStockAlert(c.Request.Context(), alertID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alerte introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alerte résolue"})
}
