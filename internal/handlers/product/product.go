package product

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"ecohub_back_end/internal/database"
	"ecohub_back_end/internal/service"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🔵 GET /api/products
//
func ListProducts(c *gin.Context) {
	filter := store.ProductFilter{
		CategorySlug:  c.Query("category"),
		Search:        c.Query("search"),
		Certification: c.Query("certification"),
		EnergyRating:  c.Query("energy_rating"),
		FeaturedOnly:  c.Query("featured") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if v := c.Query("vendor_id"); v != "" {
		if vendorID, err := gocql.ParseUUID(v); err == nil {
			filter.VendorID = &vendorID
		}
	}

	products, err := services.Default.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

//
// 🔵 GET /api/products/:id
//
func GetProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	p, err := services.Default.Catalog.Get(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// 🔵 GET /api/products/slug/:slug
//
// C'est la route des fiches produit : chaque lecture incrémente le
// compteur de vues dans Redis
func GetProductBySlug(c *gin.Context) {
	p, err := services.Default.Catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	views := int64(0)
	if database.Redis != nil {
		views, _ = database.Redis.Incr(c.Request.Context(), "views:"+p.ID.String()).Result()
	}

	c.JSON(http.StatusOK, gin.H{"product": p, "views": views})
}

//
// 🟢 POST /api/vendor/products
//
// Réservé aux vendeurs vérifiés
func CreateProduct(c *gin.Context) {
	userID := c.GetString("user_id")

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides"})
		return
	}

	p, err := services.Default.Catalog.CreateProduct(c.Request.Context(), userID, input)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Profil vendeur non vérifié"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	go service.IndexProduct(p)

	log.Printf("📦 Produit créé: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

//
// 🟡 PUT /api/vendor/products/:id
//
func UpdateProduct(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides"})
		return
	}

	p, err := services.Default.Catalog.UpdateProduct(c.Request.Context(), userID, productID, input)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Produit d'un autre vendeur"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go service.IndexProduct(p)

	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// 🔴 DELETE /api/vendor/products/:id
//
// Désactivation logique : le produit disparaît du catalogue et de
// l'index de recherche, les commandes passées le référencent toujours
func DeactivateProduct(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	err = services.Default.Catalog.DeactivateProduct(c.Request.Context(), userID, role, productID)
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Produit d'un autre vendeur"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur désactivation produit"})
		return
	}

	go service.RemoveProduct(productID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Produit désactivé"})
}
