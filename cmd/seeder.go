package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/auth"
	"github.com/frahmantamala/field-expense/internal/core/category"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	limitDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/limit"
	missionDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/mission"
	userDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/user"
	"github.com/frahmantamala/field-expense/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

type seedUser struct {
	Email string
	Name  string
	Admin bool
}

var seedUsers = []seedUser{
	{Email: "admin@fieldexpense.local", Name: "Admin", Admin: true},
	{Email: "field@fieldexpense.local", Name: "Field Officer"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed an admin and a field user, the admin permission and a zero (unlimited) daily limit per category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := initGorm(db, cfg.Observability.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return seed(cmd.Context(), gdb, cfg.Security.BCryptCost, clearData, logger.LoggerWrapper())
	},
}

// seed is idempotent: rows that already exist are left alone.
func seed(ctx context.Context, db *gorm.DB, bcryptCost int, clear bool, lg *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db = db.WithContext(ctx)

	return db.Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := clearSeedData(tx); err != nil {
				return err
			}
			lg.Info("cleared existing data")
		}

		adminPerm := userDatamodel.Permission{Name: internal.PermissionAdmin}
		if err := tx.Where(userDatamodel.Permission{Name: adminPerm.Name}).
			Attrs(userDatamodel.Permission{Description: "full administrator"}).
			FirstOrCreate(&adminPerm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", adminPerm.Name, err)
		}

		hash, err := auth.HashPassword(seedPassword, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		for _, su := range seedUsers {
			u := userDatamodel.User{Email: su.Email}
			if err := tx.Where(userDatamodel.User{Email: su.Email}).
				Attrs(userDatamodel.User{Name: su.Name, PasswordHash: hash, IsActive: true, IsApproved: true}).
				FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, err)
			}
			lg.Info("seeded user", "email", u.Email, "user_id", u.ID)

			if su.Admin {
				grant := userDatamodel.UserPermission{UserID: u.ID, PermissionID: adminPerm.ID}
				if err := tx.Where(grant).FirstOrCreate(&grant).Error; err != nil {
					return fmt.Errorf("grant admin to %s: %w", su.Email, err)
				}
			}
		}

		for _, c := range category.All() {
			l := limitDatamodel.CategoryLimit{Category: string(c)}
			if err := tx.Where(limitDatamodel.CategoryLimit{Category: string(c)}).
				Attrs(limitDatamodel.CategoryLimit{DailyLimit: decimal.Zero}).
				FirstOrCreate(&l).Error; err != nil {
				return fmt.Errorf("seed limit %s: %w", c, err)
			}
		}
		lg.Info("seeded category limits", "count", len(category.All()))

		return nil
	})
}

func clearSeedData(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&expenseDatamodel.Expense{},
		&missionDatamodel.Mission{},
		&limitDatamodel.CategoryLimit{},
		&userDatamodel.UserPermission{},
		&userDatamodel.Permission{},
		&userDatamodel.User{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
