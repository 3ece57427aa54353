package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/event"
	"github.com/festflow/festflow/internal/history"
	"github.com/festflow/festflow/internal/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, events and historical spend data for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"comments", "expense_approvals", "expenses", "advances", "historical_points", "audit_log", "events", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("pw"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		users := []user.User{
			{Username: "treasurer", DisplayName: "Sanjai", Role: user.RoleTreasurer},
			{Username: "team_lead", DisplayName: "Ronaldo", Role: user.RoleTeamLead},
			{Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent, PayoutID: "Siuuu@okhdfcbank"},
			{Username: "student2", DisplayName: "Pessi", Role: user.RoleStudent, PayoutID: "Pessi@okhdfcbank"},
			{Username: "student3", DisplayName: "Carter", Role: user.RoleStudent},
		}

		for _, u := range users {
			var existing user.User
			err := db.Where("username = ?", u.Username).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Fatalf("failed to check user %s: %v", u.Username, err)
			}

			u.PasswordHash = string(hash)
			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username)
		}

		var eventCount int64
		if err := db.Model(&event.Event{}).Count(&eventCount).Error; err != nil {
			log.Fatalf("failed to count events: %v", err)
		}
		if eventCount == 0 {
			ev := event.Event{
				Name:      "TechFest 2024",
				Budget:    decimal.NewFromInt(50000),
				StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			}
			if err := db.Create(&ev).Error; err != nil {
				log.Fatalf("failed to seed event: %v", err)
			}
			fmt.Println("Seeded event:", ev.Name)
		}

		var pointCount int64
		if err := db.Model(&history.Point{}).Count(&pointCount).Error; err != nil {
			log.Fatalf("failed to count historical points: %v", err)
		}
		if pointCount == 0 {
			curve := []struct {
				Day   int
				Spend int64
			}{
				{1, 500}, {2, 800}, {3, 1200}, {5, 1500}, {7, 2500},
				{10, 4000}, {12, 6000}, {14, 8500}, {15, 10000}, {18, 15000},
				{20, 22000}, {22, 28000}, {25, 35000}, {28, 41000}, {30, 44000},
			}
			for _, p := range curve {
				point := history.Point{
					Series:          "TechFest 2023",
					Day:             p.Day,
					CumulativeSpend: decimal.NewFromInt(p.Spend),
				}
				if err := db.Create(&point).Error; err != nil {
					log.Fatalf("failed to seed historical point: %v", err)
				}
			}
			fmt.Println("Seeded historical spend curve: TechFest 2023")
		}

		var auditCount int64
		if err := db.Model(&audit.Entry{}).Count(&auditCount).Error; err != nil {
			log.Fatalf("failed to count audit entries: %v", err)
		}
		if auditCount == 0 {
			entry := audit.NewEntry("System", "Database initialized.")
			if err := db.Create(entry).Error; err != nil {
				log.Fatalf("failed to seed audit entry: %v", err)
			}
		}

		fmt.Println("Seeding complete")
	},
}
