package routes

import (
	"os"
	"strings"
	"time"

	"ecohub_back_end/internal/handlers"
	"ecohub_back_end/internal/handlers/admin"
	"ecohub_back_end/internal/handlers/product"
	"ecohub_back_end/internal/handlers/vendor"
	"ecohub_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	allowedOrigins := []string{"http://localhost:3000"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- Public ---
	api.POST("/auth/register", middleware.RegisterRateLimit(), handlers.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), handlers.Login)
	api.POST("/auth/refresh", handlers.Refresh)
	api.GET("/auth/:provider", handlers.OAuthBegin)
	api.GET("/auth/:provider/callback", handlers.OAuthCallback)

	api.GET("/products", product.ListProducts)
	api.GET("/products/slug/:slug", product.GetProductBySlug)
	api.GET("/products/:id", product.GetProduct)
	api.GET("/products/:id/reviews", product.ListReviews)
	api.GET("/products/:id/reviews/summary", product.ReviewSummary)
	api.GET("/categories", product.ListCategories)
	api.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)

	// Stripe appelle ce endpoint, pas de JWT
	api.POST("/payment/webhook", handlers.StripeWebhook)

	// --- Authentifié ---
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/auth/logout", handlers.Logout)
		authed.GET("/auth/me", handlers.Me)
		authed.PUT("/auth/password", handlers.ChangePassword)
		authed.GET("/profile", handlers.GetProfile)
		authed.PUT("/profile", handlers.UpdateProfile)
		authed.GET("/profile/carbon", handlers.GetCarbonOffset)

		authed.GET("/cart", handlers.GetCart)
		authed.POST("/cart/add", middleware.CartRateLimit(), handlers.AddToCart)
		authed.PUT("/cart/quantity", handlers.UpdateCartQuantity)
		authed.DELETE("/cart/item/:product_id", handlers.RemoveFromCart)
		authed.DELETE("/cart", handlers.ClearCart)
		authed.GET("/cart/ws", handlers.CartWebSocket)

		authed.POST("/checkout", handlers.Checkout)
		authed.GET("/orders", handlers.ListOrders)
		authed.GET("/orders/:order_number", handlers.GetOrder)
		authed.POST("/orders/:order_number/cancel", handlers.CancelOrder)
		authed.POST("/payment/intent", handlers.CreatePaymentIntent)

		authed.GET("/wishlist", handlers.GetWishlist)
		authed.POST("/wishlist/:product_id", handlers.AddToWishlist)
		authed.DELETE("/wishlist/:product_id", handlers.RemoveFromWishlist)

		authed.POST("/products/:id/reviews", product.SubmitReview)
		authed.POST("/reviews/:review_id/helpful", product.MarkReviewHelpful)

		authed.POST("/vendors/apply", vendor.Apply)
		authed.GET("/vendors/me", vendor.MyVendor)
		authed.POST("/vendors/me/documents", vendor.UploadDocument)
	}

	// --- Vendeur vérifié (le service re-vérifie le statut du profil) ---
	vendorGroup := api.Group("/vendor")
	vendorGroup.Use(middleware.AuthRequired(), middleware.RequireVendor())
	{
		vendorGroup.POST("/products", product.CreateProduct)
		vendorGroup.PUT("/products/:id", product.UpdateProduct)
		vendorGroup.DELETE("/products/:id", product.DeactivateProduct)
		vendorGroup.POST("/products/:id/restock", product.RestockProduct)
		vendorGroup.POST("/products/:id/images", product.UploadProductImage)
		vendorGroup.DELETE("/products/:id/images", product.RemoveProductImage)
	}

	// --- Admin ---
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.POST("/categories", product.CreateCategory)
		adminGroup.GET("/vendors", vendor.ListVendors)
		adminGroup.PUT("/vendors/:id/status", vendor.SetVendorStatus)
		adminGroup.GET("/vendors/:id/documents", vendor.GetDocumentURLs)
		adminGroup.GET("/products/:id/reviews/pending", product.ListPendingReviews)
		adminGroup.PUT("/reviews/:review_id/approve", product.ApproveReview)
		adminGroup.PUT("/reviews/:review_id/verify", product.VerifyReviewPurchase)
		adminGroup.GET("/stock-alerts", product.ListStockAlerts)
		adminGroup.PUT("/stock-alerts/:alert_id/resolve", product.ResolveStockAlert)
		adminGroup.PUT("/orders/:order_number/status", handlers.UpdateOrderStatus)
		adminGroup.POST("/users/:user_id/ban", admin.BanUser)
		adminGroup.DELETE("/users/:user_id/ban", admin.UnbanUser)
		adminGroup.GET("/audit", admin.ListAudit)
	}
}
