package product

import (
	"log"
	"net/http"
	"strconv"

	"ecohub_back_end/internal/service"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

//
// 🔍 GET /api/search?q=...
//
// Recherche plein texte Elasticsearch sur le catalogue, filtrable par
// certification, classe énergétique et empreinte carbone maximale
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	filters := service.SearchFilters{
		Certification: c.Query("certification"),
		EnergyRating:  c.Query("energy_rating"),
	}
	if v := c.Query("max_carbon"); v != "" {
		if maxCarbon, err := strconv.ParseFloat(v, 64); err == nil && maxCarbon > 0 {
			filters.MaxCarbon = maxCarbon
		}
	}

	results, err := service.SearchProducts(query, filters)
	if err != nil {
		// Repli sur un scan catalogue quand Elastic est indisponible
		log.Printf("⚠️ Recherche Elastic indisponible, repli catalogue: %v", err)
		products, err := services.Default.Catalog.List(c.Request.Context(), store.ProductFilter{
			Search:        query,
			Certification: filters.Certification,
			EnergyRating:  filters.EnergyRating,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results":  products,
			"count":    len(products),
			"fallback": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}
