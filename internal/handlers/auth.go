package handlers

import (
	"log"
	"net/http"
	"time"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"
	"ecohub_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/auth/register
//
func Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:        gocql.TimeUUID().String(),
		Email:     input.Email,
		Name:      input.Name,
		Password:  hash,
		Role:      models.RoleConsumer,
		Provider:  "local",
		CreatedAt: &now,
	}

	if err := services.Default.Store.CreateUser(c.Request.Context(), user); err != nil {
		if err == store.ErrAlreadyExists {
			c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	// Email de bienvenue hors du chemin de réponse
	go func(email, name string) {
		if err := utils.SendWelcomeEmail(email, name); err != nil {
			log.Printf("⚠️ Email de bienvenue non envoyé à %s: %v", email, err)
		}
	}(user.Email, user.Name)

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("👤 Nouveau compte: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

//
// 🟢 POST /api/auth/login
//
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	user, err := services.Default.Store.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}

	// Cache des vérifications réussies : évite de refaire Argon2id à chaque login
	valid, _ := cache.GetPasswordHashFromCache(input.Email, input.Password)
	if !valid {
		valid, err = utils.VerifyPassword(input.Password, user.Password)
		if err != nil || !valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
			return
		}
		cache.SetPasswordHashInCache(input.Email, input.Password)
	}

	// Migration paresseuse des anciens hashes bcrypt vers Argon2id, au
	// premier login réussi
	if !utils.IsArgon2Hash(user.Password) {
		if rehash, err := utils.HashPassword(input.Password); err == nil {
			if err := services.Default.Store.SetUserPassword(c.Request.Context(), user.ID, rehash); err != nil {
				log.Printf("⚠️ Migration Argon2id échouée pour %s: %v", user.Email, err)
			} else {
				log.Printf("🔑 Hash migré vers Argon2id pour %s", user.Email)
			}
		}
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, utils.RefreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké pour %s: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"refresh_token": refresh,
		"user":          user,
	})
}

//
// 🟢 POST /api/auth/refresh
//
func Refresh(c *gin.Context) {
	var input struct {
		UserID       string `json:"user_id" binding:"required"`
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	stored, err := cache.GetRefreshToken(input.UserID)
	if err != nil || stored != input.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	user, err := services.Default.Store.GetUser(c.Request.Context(), input.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

//
// 🟡 PUT /api/auth/password
//
// Changement de mot de passe : l'ancien est exigé, le cache de
// vérification est purgé et le refresh token révoqué pour forcer une
// reconnexion des autres sessions.
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
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

	valid, err := utils.VerifyPassword(input.CurrentPassword, user.Password)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe actuel incorrect"})
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if err := services.Default.Store.SetUserPassword(ctx, userID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour mot de passe"})
		return
	}

	cache.InvalidateAuthCache(user.Email)
	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Suppression refresh token échouée pour %s: %v", userID, err)
	}

	log.Printf("🔑 Mot de passe changé pour %s", user.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour"})
}

//
// 🔴 POST /api/auth/logout
//
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")

	// Révoquer le token courant jusqu'à son expiration naturelle
	if jti := c.GetString("jti"); jti != "" {
		if err := cache.BlacklistToken(jti, utils.AccessTokenTTL); err != nil {
			log.Printf("⚠️ Blacklist token échouée: %v", err)
		}
	}
	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Suppression refresh token échouée: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

//
// 🔵 GET /api/auth/me
//
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUser(c.Request.Context(), services.Default.Store, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
