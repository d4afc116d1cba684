package routes

import (
	"officine_back_end/internal/handlers"
	"officine_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, oh *handlers.OrderHandler, ch *handlers.CartHandler) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), handlers.Register)
		auth.POST("/login", middleware.LoginRateLimit(), handlers.Login)
		auth.GET("/:provider", handlers.BeginAuth)
		auth.GET("/:provider/callback", handlers.CallbackAuth)
		auth.GET("/me", middleware.AuthRequired(), handlers.Me)
	}

	// Pharmacies (lecture publique)
	pharmacies := api.Group("/pharmacies")
	{
		pharmacies.GET("", handlers.GetAllPharmacies)
		pharmacies.GET("/nearby", handlers.GetNearbyPharmacies)
		pharmacies.GET("/:id", handlers.GetPharmacy)
		pharmacies.GET("/:id/products", handlers.GetProductsByPharmacy)
	}

	// Produits (lecture publique)
	products := api.Group("/products")
	{
		products.GET("", handlers.GetAllProducts)
		products.GET("/search", middleware.SearchRateLimit(), handlers.SearchProducts)
		products.GET("/:id", handlers.GetProduct)
	}

	// Panier (authentifié)
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("", ch.GetCart)
		cart.POST("", middleware.CartRateLimit(), ch.AddToCart)
		cart.PUT("", ch.UpdateCartItem)
		cart.DELETE("/:productId", ch.RemoveFromCart)
		cart.DELETE("", ch.ClearCart)
		cart.GET("/ws", ch.CartWebSocket)
	}

	// Commandes (authentifié)
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.POST("/checkout", oh.Checkout)
		orders.GET("", oh.MyOrders)
		orders.GET("/ws", handlers.OrderWebSocket)
		orders.GET("/:id", oh.GetOrder)
		orders.POST("/:id/cancel", oh.CancelOrder)
	}

	// Administration
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.POST("/pharmacies", handlers.CreatePharmacy)
		admin.PUT("/pharmacies/:id", handlers.UpdatePharmacy)
		admin.DELETE("/pharmacies/:id", handlers.DeletePharmacy)

		admin.POST("/products", handlers.CreateProduct)
		admin.PUT("/products/:id", handlers.UpdateProduct)
		admin.DELETE("/products/:id", handlers.DeleteProduct)
		admin.POST("/products/image", handlers.UploadProductImage)
		admin.POST("/products/:id/stock", handlers.UpdateStock)
		admin.GET("/products/:id/stock/movements", handlers.GetStockMovements)

		admin.GET("/orders", oh.ListOrders)
		admin.POST("/orders/:id/accept", oh.AcceptOrder)
		admin.POST("/orders/:id/reject", oh.RejectOrder)
	}
}
