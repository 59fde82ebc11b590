package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/controllers"
	"github.com/n11047500/Capstone-2024-sub000/middleware"
	"github.com/n11047500/Capstone-2024-sub000/models"
)

// Setup registers CORS and every /api/v1 endpoint on router
func Setup(router *gin.Engine, cfg *config.Config) {
	router.Use(cors.New(CORSConfig(cfg)))

	v1 := router.Group("/api/v1")
	SetupPublicRoutes(v1)
	SetupAccountRoutes(v1, cfg)
	SetupEmployeeRoutes(v1, cfg)
}

// AllowedOrigins lists the storefront origin(s) in FRONTEND_URL, comma separated
func AllowedOrigins(cfg *config.Config) []string {
	origins := []string{}
	for _, origin := range strings.Split(cfg.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// CORSConfig allows requests from AllowedOrigins
func CORSConfig(cfg *config.Config) cors.Config {
	return cors.Config{
		AllowOrigins:     AllowedOrigins(cfg),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// FeedOriginCheck accepts order feed upgrades from AllowedOrigins.
// Clients that send no Origin header are not browsers and pass.
func FeedOriginCheck(cfg *config.Config) func(r *http.Request) bool {
	allowed := make(map[string]struct{})
	for _, origin := range AllowedOrigins(cfg) {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// SetupPublicRoutes registers the storefront endpoints that need no session
func SetupPublicRoutes(v1 *gin.RouterGroup) {
	// ─────────── Catalog ───────────
	v1.GET("/products", controllers.ListProducts)
	v1.GET("/products/:id", controllers.GetProduct)
	v1.GET("/search", controllers.SearchProducts)
	v1.GET("/uploads/:filename", controllers.GetUploadedImage)

	// ─────────── Reviews ───────────
	v1.GET("/reviews/:productId", controllers.GetProductReviews)
	v1.POST("/reviews", controllers.CreateReview)

	// ─────────── Checkout ───────────
	checkout := v1.Group("/checkout/orders")
	{
		checkout.POST("", controllers.CreateCheckoutOrder)
		checkout.GET("/details", controllers.GetCheckoutOrderDetails)
	}

	// ─────────── Mail forms ───────────
	v1.POST("/submit-form", controllers.SubmitCustomOrder)
	v1.POST("/send-contact-email", controllers.SendContactEmail)
	v1.POST("/send-email", controllers.ResendOrderConfirmation)

	// ─────────── Auth ───────────
	v1.POST("/register", controllers.Register)
	v1.POST("/login", controllers.Login)
	v1.POST("/forgot-password", controllers.ForgotPassword)
	v1.POST("/reset-password/:token", controllers.ResetPassword)
}

// SetupAccountRoutes registers the endpoints any signed in user may call
func SetupAccountRoutes(v1 *gin.RouterGroup, cfg *config.Config) {
	account := v1.Group("/user")
	account.Use(middleware.EnsureValidToken(cfg))
	{
		account.GET("/:email", controllers.GetUser)
		account.PUT("/:email", controllers.UpdateUser)
	}
}

// SetupEmployeeRoutes registers the staff endpoints. Requires an employee session.
func SetupEmployeeRoutes(v1 *gin.RouterGroup, cfg *config.Config) {
	employee := v1.Group("")
	employee.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(models.RoleEmployee))
	{
		employee.POST("/products", controllers.CreateProduct)
		employee.PUT("/products/:id", controllers.UpdateProduct)
		employee.DELETE("/products/:id", controllers.DeleteProduct)

		employee.POST("/update-role", controllers.UpdateRole)

		orders := employee.Group("/orders")
		{
			orders.GET("", controllers.ListOrders)
			orders.GET("/export", controllers.ExportOrders)
			orders.GET("/feed", controllers.OrderFeed)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id", controllers.UpdateOrderStatus)
		}
	}
}
