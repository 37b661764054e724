package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"ecohub_back_end/internal/database"
)

var ctx = context.Background()

// --- Refresh Tokens ---

// StoreRefreshToken stocke un refresh token pour un utilisateur
func StoreRefreshToken(userID, refreshToken string, duration time.Duration) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Set(ctx, key, refreshToken, duration).Err()
}

// GetRefreshToken récupère le refresh token d'un utilisateur
func GetRefreshToken(userID string) (string, error) {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Get(ctx, key).Result()
}

// DeleteRefreshToken supprime le refresh token (logout)
func DeleteRefreshToken(userID string) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Del(ctx, key).Err()
}

// --- Blacklist JWT (révocation avant expiration) ---

// BlacklistToken ajoute un token JWT à la blacklist
func BlacklistToken(tokenID string, duration time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return database.Redis.Set(ctx, key, "revoked", duration).Err()
}

// IsTokenBlacklisted vérifie si un token est blacklisté
func IsTokenBlacklisted(tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	exists, err := database.Redis.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification blacklist: %v", err)
		return false
	}
	return exists > 0
}

// --- Ban utilisateurs ---

// BanUser bannit un utilisateur (révocation permanente)
func BanUser(userID string) error {
	key := fmt.Sprintf("banned:%s", userID)
	// Pas d'expiration = permanent
	return database.Redis.Set(ctx, key, "true", 0).Err()
}

// UnbanUser débannit un utilisateur
func UnbanUser(userID string) error {
	key := fmt.Sprintf("banned:%s", userID)
	return database.Redis.Del(ctx, key).Err()
}

// IsUserBanned vérifie si un utilisateur est banni
func IsUserBanned(userID string) bool {
	key := fmt.Sprintf("banned:%s", userID)
	exists, err := database.Redis.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification ban: %v", err)
		return false
	}
	return exists > 0
}

// --- Liste d'envies (set Redis par utilisateur) ---

func wishlistKey(userID string) string {
	return "wishlist:" + userID
}

// AddToWishlist ajoute un produit à la liste d'envies
func AddToWishlist(userID, productID string) error {
	return database.Redis.SAdd(ctx, wishlistKey(userID), productID).Err()
}

// RemoveFromWishlist retire un produit de la liste d'envies
func RemoveFromWishlist(userID, productID string) error {
	return database.Redis.SRem(ctx, wishlistKey(userID), productID).Err()
}

// GetWishlist retourne les identifiants des produits de la liste d'envies
func GetWishlist(userID string) ([]string, error) {
	return database.Redis.SMembers(ctx, wishlistKey(userID)).Result()
}

// IsInWishlist vérifie la présence d'un produit dans la liste d'envies
func IsInWishlist(userID, productID string) bool {
	in, err := database.Redis.SIsMember(ctx, wishlistKey(userID), productID).Result()
	return err == nil && in
}
