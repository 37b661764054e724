package admin

import (
	"log"
	"net/http"
	"time"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🔴 POST /api/admin/users/:user_id/ban
//
// Suspension immédiate : le flag Redis est vérifié par le middleware à
// chaque requête, les tokens en circulation deviennent inutilisables
// sans attendre leur expiration.
func BanUser(c *gin.Context) {
	targetUserID := c.Param("user_id")
	actorID := c.GetString("user_id")

	if _, err := services.Default.Store.GetUser(c.Request.Context(), targetUserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if err := cache.BanUser(targetUserID); err != nil {
		log.Printf("❌ Erreur ban user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ban"})
		return
	}
	if err := cache.DeleteRefreshToken(targetUserID); err != nil {
		log.Printf("⚠️ Suppression refresh token échouée pour %s: %v", targetUserID, err)
	}

	entry := models.AuditEntry{
		ID:         gocql.TimeUUID(),
		ActorID:    actorID,
		Action:     "user.ban",
		TargetType: "user",
		TargetID:   targetUserID,
		CreatedAt:  time.Now(),
	}
	if err := services.Default.Store.RecordAudit(c.Request.Context(), entry); err != nil {
		log.Printf("⚠️ Audit non enregistré pour le ban de %s: %v", targetUserID, err)
	}

	log.Printf("✅ User banni: %s", targetUserID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur banni"})
}

//
// 🟢 DELETE /api/admin/users/:user_id/ban
//
func UnbanUser(c *gin.Context) {
	targetUserID := c.Param("user_id")
	actorID := c.GetString("user_id")

	if err := cache.UnbanUser(targetUserID); err != nil {
		log.Printf("❌ Erreur unban user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur unban"})
		return
	}

	entry := models.AuditEntry{
		ID:         gocql.TimeUUID(),
		ActorID:    actorID,
		Action:     "user.unban",
		TargetType: "user",
		TargetID:   targetUserID,
		CreatedAt:  time.Now(),
	}
	if err := services.Default.Store.RecordAudit(c.Request.Context(), entry); err != nil {
		log.Printf("⚠️ Audit non enregistré pour le unban de %s: %v", targetUserID, err)
	}

	log.Printf("✅ User débanni: %s", targetUserID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur débanni"})
}
