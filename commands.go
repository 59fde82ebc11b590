package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var promoteEmail string

// migrateCmd creates or updates the database tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}
		return migrate()
	},
}

// seedCmd inserts the sample catalog
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample product catalog",
	Long: `Insert the sample product catalog. Products are matched by name,
so running seed twice does not create duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}
		if err := migrate(); err != nil {
			return err
		}
		created, err := seedProducts(config.GetDB())
		if err != nil {
			return err
		}
		log.Printf("Seeded %d new products", created)
		return nil
	},
}

// promoteCmd grants the employee role to an existing account
var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Give an existing account the employee role",
	Long: `Give an existing account the employee role.

Examples:
  planterbox-api promote --email staff@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}
		if err := promoteUser(config.GetDB(), promoteEmail); err != nil {
			return err
		}
		log.Printf("%s is now an employee", promoteEmail)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the account to promote")
	_ = promoteCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd, seedCmd, promoteCmd)
}

// sampleProducts is the catalog inserted by the seed command
func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Cedar Planter Box",
			Price:       decimal.RequireFromString("89.50"),
			Quantity:    20,
			Description: "Rot resistant western red cedar box with drainage holes.",
			Dimensions:  "60cm x 30cm x 30cm",
			Options:     "Default,Custom",
		},
		{
			Name:        "Raised Garden Bed",
			Price:       decimal.RequireFromString("149.00"),
			Quantity:    10,
			Description: "Galvanised steel raised bed for vegetables and herbs.",
			Dimensions:  "120cm x 60cm x 40cm",
			Options:     "Default,Custom",
		},
		{
			Name:        "Herb Window Box",
			Price:       decimal.RequireFromString("39.95"),
			Quantity:    35,
			Description: "Slim box that clips to a window ledge.",
			Dimensions:  "50cm x 15cm x 15cm",
			Options:     "Default",
		},
		{
			Name:        "Vertical Wall Planter",
			Price:       decimal.RequireFromString("119.00"),
			Quantity:    8,
			Description: "Three tier wall mounted planter for small courtyards.",
			Dimensions:  "80cm x 20cm x 100cm",
			Options:     "Default,Custom",
		},
	}
}

// seedProducts inserts sample products missing by name and returns how many were created
func seedProducts(db *gorm.DB) (int, error) {
	created := 0
	for _, product := range sampleProducts() {
		var count int64
		if err := db.Model(&models.Product{}).Where("name = ?", product.Name).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to check %s: %w", product.Name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&product).Error; err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", product.Name, err)
		}
		created++
	}
	return created, nil
}

// promoteUser sets the employee role on the account with email
func promoteUser(db *gorm.DB, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no account found for %s", email)
		}
		return fmt.Errorf("failed to look up %s: %w", email, err)
	}
	if user.IsEmployee() {
		return nil
	}
	if err := db.Model(&user).Update("role", models.RoleEmployee).Error; err != nil {
		return fmt.Errorf("failed to promote %s: %w", email, err)
	}
	return nil
}
