package admin

import (
	"net/http"
	"strconv"

	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

//
// 🔵 GET /api/admin/audit?limit=100
//
// Journal des actions sensibles (changements de statut vendeur,
// approbations d'avis), les plus récentes d'abord
func ListAudit(c *gin.Context) {
	limit := 100
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, err := services.Default.Store.ListAudit(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération journal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
