package product

import (
	"log"
	"net/http"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/vendor/products/:id/images
//
// Upload multipart d'une image produit vers MinIO. L'URL est ajoutée
// à la liste d'images du produit.
func UploadProductImage(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	ctx := c.Request.Context()
	p, err := services.Default.Store.GetProduct(ctx, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if role != models.RoleAdmin {
		vendor, err := services.Default.Vendors.MyVendor(ctx, userID)
		if err != nil || vendor.ID != p.VendorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Produit d'un autre vendeur"})
			return
		}
	}

	url, err := services.UploadProductImage(ctx, productID.String(), file)
	if err != nil {
		log.Printf("❌ Upload image échoué pour %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	p.ImageURLs = append(p.ImageURLs, url)
	if err := services.Default.Store.UpdateProduct(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement image"})
		return
	}

	log.Printf("🖼️ Image ajoutée au produit %s", p.Name)
	c.JSON(http.StatusCreated, gin.H{
		"url":        url,
		"image_urls": p.ImageURLs,
	})
}

//
// 🔴 DELETE /api/vendor/products/:id/images
//
// Retire une URL de la liste d'images (l'objet MinIO est conservé,
// les commandes passées peuvent encore l'afficher)
func RemoveProductImage(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url requise"})
		return
	}

	ctx := c.Request.Context()
	p, err := services.Default.Store.GetProduct(ctx, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if role != models.RoleAdmin {
		vendor, err := services.Default.Vendors.MyVendor(ctx, userID)
		if err != nil || vendor.ID != p.VendorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Produit d'un autre vendeur"})
			return
		}
	}

	urls := p.ImageURLs[:0]
	found := false
	for _, u := range p.ImageURLs {
		if u == input.URL {
			found = true
			continue
		}
		urls = append(urls, u)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image absente du produit"})
		return
	}
	p.ImageURLs = urls

	if err := services.Default.Store.UpdateProduct(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_urls": p.ImageURLs})
}
