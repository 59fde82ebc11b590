package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/n11047500/Capstone-2024-sub000/routes"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/spf13/cobra"
)

// rootCmd runs the API server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "planterbox-api",
	Short: "Planter box storefront API",
	Long: `Planter box storefront API.

Commands:
  serve    - Start the HTTP server (default)
  migrate  - Create or update the database tables
  seed     - Insert the sample product catalog
  promote  - Give an existing account the employee role`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
	SilenceUsage: true,
}

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and connects to the database
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// migrate creates or updates every table
func migrate() error {
	if err := config.GetDB().AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed successfully")
	return nil
}

func runServe() error {
	log.Println("Starting Planter Box API server...")

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	if err := migrate(); err != nil {
		return err
	}

	if err := initServices(context.Background(), cfg); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	return router.Run(port)
}

// initServices wires the global service instances the controllers use
func initServices(ctx context.Context, cfg *config.Config) error {
	var s3Service services.S3Interface
	if cfg.StorageEnabled() {
		var err error
		s3Service, err = services.InitS3Service(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 service: %w", err)
		}
		log.Printf("Custom order attachments will be stored in s3://%s", cfg.AWSS3Bucket)
	} else {
		log.Printf("AWS_S3_BUCKET not set, custom order attachments are only emailed")
	}

	services.InitAttachmentService(s3Service)
	services.InitPaymentService()
	services.InitMailer()
	services.InitCaptchaVerifier()
	services.InitTokenService()
	services.InitOrderFeed(routes.FeedOriginCheck(cfg))
	return nil
}

// setupRouter builds the gin engine with every route registered
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = 16 << 20

	router.GET("/", rootStatus)
	routes.Setup(router, cfg)

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	return router
}

// rootStatus answers plain text for load balancer health checks
func rootStatus(c *gin.Context) {
	c.String(http.StatusOK, "Planter Box API is running")
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Planter Box API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
