package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/pkg/postgres"
	"papertrade/pkg/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

type seedUser struct {
	FirstName string
	LastName  string
}

var seedNames = []seedUser{
	{"Alice", "Stone"},
	{"Ben", "Shaw"},
	{"Carla", "Singh"},
	{"Dmitri", "Sokolov"},
	{"Emma", "Sato"},
	{"Felix", "Schmidt"},
	{"Grace", "Silva"},
	{"Hugo", "Strand"},
}

var seedHoldings = []struct {
	Ticker  string
	Company string
	Price   float64
}{
	{"AAPL", "Apple Inc.", 175.50},
	{"MSFT", "Microsoft Corporation", 420.30},
	{"GOOGL", "Alphabet Inc.", 155.80},
	{"TSLA", "Tesla, Inc.", 245.60},
	{"NVDA", "NVIDIA Corporation", 875.20},
	{"AMZN", "Amazon.com, Inc.", 185.40},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reset and seed the database with demo accounts",
	Run:   runSeed,
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		TimeZone: cfg.Database.TimeZone,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.DB.Transaction(seed); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	fmt.Println("Seeded database successfully.")
}

func seed(tx *gorm.DB) error {
	// Wipe in FK order so reseeding is repeatable.
	for _, table := range []string{
		"post_interactions", "comments", "transactions", "cash_transactions",
		"trading_posts", "stock_holdings", "follows", "users",
	} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	admin := entity.User{
		NetID:       "admin",
		FirstName:   "Admin",
		LastName:    "Account",
		Balance:     100000,
		AvatarID:    1,
		IsActive:    true,
		LastLoginAt: utils.TimeNowEastern(),
	}
	if err := tx.Create(&admin).Error; err != nil {
		return err
	}

	for _, name := range seedNames {
		netID := fmt.Sprintf("%ss%d", strings.ToLower(name.FirstName[:1]), rand.Intn(900)+100)
		user := entity.User{
			NetID:       netID,
			FirstName:   name.FirstName,
			LastName:    name.LastName,
			Balance:     40000 + rand.Float64()*80000,
			AvatarID:    rand.Intn(9) + 1,
			IsActive:    true,
			LastLoginAt: utils.TimeNowEastern(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		// Each demo user gets a couple of positions and one public post so
		// the feed is not empty on first login.
		picks := rand.Perm(len(seedHoldings))[:2]
		for _, p := range picks {
			h := seedHoldings[p]
			quantity := float64(rand.Intn(20) + 1)
			holding := entity.StockHolding{
				UserID:          user.ID,
				Ticker:          h.Ticker,
				CompanyName:     h.Company,
				Quantity:        quantity,
				AverageBuyPrice: h.Price,
				CurrentPrice:    h.Price,
			}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}

			post := entity.TradingPost{
				UserID:    user.ID,
				Title:     fmt.Sprintf("Bought %s", h.Ticker),
				Content:   fmt.Sprintf("Bought %.0f shares of %s at $%.2f per share.", quantity, h.Ticker, h.Price),
				Ticker:    h.Ticker,
				TradeType: entity.TransactionTypeBuy,
				Quantity:  quantity,
				Price:     h.Price,
				IsPublic:  true,
			}
			if err := tx.Create(&post).Error; err != nil {
				return err
			}

			record := entity.Transaction{
				UserID:          user.ID,
				Ticker:          h.Ticker,
				TransactionType: entity.TransactionTypeBuy,
				Quantity:        quantity,
				Price:           h.Price,
				TotalAmount:     quantity * h.Price,
				TradingPostID:   &post.ID,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		// Everyone follows the admin account to give the feed a spine.
		follow := entity.Follow{FollowerID: user.ID, FollowedID: admin.ID}
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{Use: "seed"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing seed CLI: %s\n", err)
		os.Exit(1)
	}
}
