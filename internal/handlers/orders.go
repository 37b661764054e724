package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"ecohub_back_end/internal/cache"
	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"
	"ecohub_back_end/internal/store"
	"ecohub_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

//
// 🔵 GET /api/orders
//
func ListOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	orders, err := services.Default.Store.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

//
// 🔵 GET /api/orders/:order_number
//
func GetOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	order, err := services.Default.Store.GetOrder(c.Request.Context(), c.Param("order_number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

//
// 🔴 POST /api/orders/:order_number/cancel
//
// Annulation par le client (ou un admin) tant que la commande n'est
// pas expédiée. Le stock réservé est restitué.
func CancelOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	order, err := services.Default.Checkout.CancelOrder(c.Request.Context(), userID, role, c.Param("order_number"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Commande déjà expédiée, annulation impossible"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation commande"})
		return
	}

	go sendOrderStatusEmail(order, models.OrderStatusCancelled)

	log.Printf("🔴 Commande %s annulée par %s", order.OrderNumber, userID)
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Transitions de statut autorisées côté admin. L'annulation passe par
// CancelOrder, qui restitue le stock.
var adminOrderTransitions = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusPaid},
	models.OrderStatusPaid:    {models.OrderStatusShipped},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

//
// 🟡 PUT /api/admin/orders/:order_number/status
//
func UpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status requis"})
		return
	}

	ctx := c.Request.Context()
	orderNumber := c.Param("order_number")

	order, err := services.Default.Store.GetOrder(ctx, orderNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	allowed := false
	for _, next := range adminOrderTransitions[order.Status] {
		if next == input.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Transition " + order.Status + " -> " + input.Status + " non autorisée",
		})
		return
	}

	// conditionnel sur le statut lu : deux admins concurrents ne peuvent
	// pas appliquer deux transitions depuis le même état
	applied, err := services.Default.Store.TransitionOrderStatus(ctx, orderNumber, order.Status, input.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour statut"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Le statut de la commande a changé, réessayez"})
		return
	}
	order.Status = input.Status

	go sendOrderStatusEmail(order, input.Status)

	log.Printf("📦 Commande %s: %s", orderNumber, input.Status)
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// sendOrderStatusEmail prévient le client d'un changement de statut,
// best effort, appelé en goroutine
func sendOrderStatusEmail(order models.Order, newStatus string) {
	user, err := cache.GetUser(context.Background(), services.Default.Store, order.UserID)
	if err != nil {
		return
	}
	if err := utils.SendOrderStatusEmail(order, user.Email, newStatus); err != nil {
		log.Printf("⚠️ Email statut non envoyé pour %s: %v", order.OrderNumber, err)
	}
}
