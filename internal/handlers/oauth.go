package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"
	"ecohub_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth/gothic"
)

//
// 🟢 GET /api/auth/:provider
//
func OAuthBegin(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

//
// 🟢 GET /api/auth/:provider/callback
//
func OAuthCallback(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ OAuth échoué: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	ctx := c.Request.Context()
	user, err := services.Default.Store.GetUserByEmail(ctx, gothUser.Email)
	if err == store.ErrNotFound {
		now := time.Now()
		user = models.User{
			ID:         gocql.TimeUUID().String(),
			Email:      gothUser.Email,
			Name:       gothUser.Name,
			Role:       models.RoleConsumer,
			Provider:   gothUser.Provider,
			ProviderID: gothUser.UserID,
			CreatedAt:  &now,
		}
		if err := services.Default.Store.CreateUser(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
			return
		}
		log.Printf("👤 Compte créé via %s: %s", gothUser.Provider, user.Email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontend+"/auth/callback?token="+token)
}
