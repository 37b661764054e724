package handlers

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"

	"ecohub_back_end/internal/models"
	"ecohub_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// orderAmountInCents convertit un total en euros vers des centimes Stripe.
// Arrondi et non tronqué : 37.01 stocké en flottant vaut 37.009999...,
// la troncature facturerait un centime de moins.
func orderAmountInCents(total float64) int64 {
	return int64(math.Round(total * 100))
}

//
// 💳 POST /api/payment/intent
//
// Crée un PaymentIntent Stripe pour une commande "pending". Le montant
// vient des totaux figés de la commande, jamais du client.
func CreatePaymentIntent(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	var input struct {
		OrderNumber string `json:"order_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_number requis"})
		return
	}

	ctx := c.Request.Context()
	order, err := services.Default.Store.GetOrder(ctx, input.OrderNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}
	if order.Status != models.OrderStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Commande déjà payée ou annulée"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(orderAmountInCents(order.Total)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_number": order.OrderNumber,
			"user_id":      userID,
			"email":        email,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return
	}

	if err := services.Default.Store.SetOrderPaymentIntent(ctx, order.OrderNumber, intent.ID); err != nil {
		log.Printf("⚠️ PaymentIntent %s non rattaché à %s: %v", intent.ID, order.OrderNumber, err)
	}

	log.Printf("💳 PaymentIntent %s créé pour %s (%.2f €)", intent.ID, order.OrderNumber, order.Total)
	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
	})
}

//
// 📥 POST /api/payment/webhook
//
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET, mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu: %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

func handleStripeEvent(event stripe.Event) {
	if event.Type != "payment_intent.succeeded" {
		log.Printf("ℹ️ Événement ignoré: %s", event.Type)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}

	orderNumber := pi.Metadata["order_number"]
	if orderNumber == "" {
		log.Println("⚠️ PaymentIntent sans order_number, ignoré")
		return
	}

	ctx := context.Background()
	order, err := services.Default.Store.GetOrder(ctx, orderNumber)
	if err != nil {
		log.Printf("❌ Commande %s introuvable pour le paiement %s", orderNumber, pi.ID)
		return
	}

	// transition conditionnelle : un webhook rejoué (ou une annulation
	// concurrente) perd la course et ne déclenche rien
	applied, err := services.Default.Store.TransitionOrderStatus(ctx, orderNumber,
		models.OrderStatusPending, models.OrderStatusPaid)
	if err != nil {
		log.Printf("❌ Passage en paid échoué pour %s: %v", orderNumber, err)
		return
	}
	if !applied {
		log.Printf("🔁 Commande %s n'est plus pending, webhook ignoré", orderNumber)
		return
	}
	order.Status = models.OrderStatusPaid

	log.Printf("✅ Commande %s payée (%s)", orderNumber, pi.ID)
	go sendOrderStatusEmail(order, models.OrderStatusPaid)
}
