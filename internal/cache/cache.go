package cache

import (
	"context"
	"encoding/json"
	"time"

	"ecohub_back_end/internal/database"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/store"
)

const UserCacheTTL = 5 * time.Minute

// GetUser récupère un utilisateur depuis Redis, ou le store en cas de miss
func GetUser(ctx context.Context, st store.Store, userID string) (models.User, error) {
	key := "user:" + userID

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return user, nil
		}
	}

	user, err := st.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if jsonData, err := json.Marshal(user); err == nil {
		database.Redis.Set(ctx, key, jsonData, UserCacheTTL)
	}
	return user, nil
}

// InvalidateUser invalide le cache d'un utilisateur (profil modifié,
// rôle changé, commande passée : le compteur carbone bouge)
func InvalidateUser(userID string) {
	database.Redis.Del(context.Background(), "user:"+userID)
}

