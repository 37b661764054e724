package middleware

import (
	"net/http"

	"ecohub_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireVendor réserve la route aux vendeurs (et aux admins).
// La vérification fine (profil vendeur vérifié, propriété du produit)
// reste dans les services.
func RequireVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || (role != models.RoleVendor && role != models.RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux vendeurs"})
			c.Abort()
			return
		}
		c.Next()
	}
}
