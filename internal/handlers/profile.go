package handlers

import (
	"net/http"
	"time"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

//
// 🔵 GET /api/profile
//
func GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUser(c.Request.Context(), services.Default.Store, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

//
// 🟡 PUT /api/profile
//
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name                string `json:"name"`
		Phone               string `json:"phone"`
		Address             string `json:"address"`
		City                string `json:"city"`
		State               string `json:"state"`
		Zip                 string `json:"zip"`
		Country             string `json:"country"`
		SustainabilityGoals string `json:"sustainability_goals"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()
	user, err := services.Default.Store.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	user.Phone = input.Phone
	user.Address = input.Address
	user.City = input.City
	user.State = input.State
	user.Zip = input.Zip
	user.Country = input.Country
	user.SustainabilityGoals = input.SustainabilityGoals
	now := time.Now()
	user.UpdatedAt = &now

	if err := services.Default.Store.UpdateUserProfile(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}
	cache.InvalidateUser(userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Profil mis à jour",
		"user":    user,
	})
}

//
// 🔵 GET /api/profile/carbon
//
// Compteur cumulé de CO2 compensé par les achats de l'utilisateur
func GetCarbonOffset(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUser(c.Request.Context(), services.Default.Store, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"carbon_offset": user.CarbonOffset})
}
