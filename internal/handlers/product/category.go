package product

import (
	"errors"
	"net/http"

	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🔵 GET /api/categories
//
func ListCategories(c *gin.Context) {
	categories, err := services.Default.Catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération catégories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

//
// 🟢 POST /api/admin/categories
//
func CreateCategory(c *gin.Context) {
	role := c.GetString("role")

	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		ParentID    string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name requis"})
		return
	}

	var parentID *gocql.UUID
	if input.ParentID != "" {
		id, err := gocql.ParseUUID(input.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id invalide"})
			return
		}
		parentID = &id
	}

	cat, err := services.Default.Catalog.CreateCategory(c.Request.Context(), role, input.Name, input.Description, input.Icon, parentID)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Réservé aux administrateurs"})
		return
	case errors.Is(err, store.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Catégorie déjà existante"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": cat})
}
