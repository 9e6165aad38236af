package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/frahmantamala/field-expense/internal/auth"
	authPostgres "github.com/frahmantamala/field-expense/internal/auth/postgres"
	"github.com/frahmantamala/field-expense/internal/core/events"
	"github.com/frahmantamala/field-expense/internal/expense"
	expensePostgres "github.com/frahmantamala/field-expense/internal/expense/postgres"
	"github.com/frahmantamala/field-expense/internal/limit"
	limitPostgres "github.com/frahmantamala/field-expense/internal/limit/postgres"
	"github.com/frahmantamala/field-expense/internal/report"
	userPostgres "github.com/frahmantamala/field-expense/internal/user/postgres"
	"github.com/frahmantamala/field-expense/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	exportFrom     string
	exportTo       string
	exportStatus   string
	exportCategory string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses as CSV",
	Long:  `Write every user's expenses in the date range as CSV (Date,User,Category,Description,Amount,Status).`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only records in this status")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "only records in this category")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
}

// exportFilter reuses the HTTP query parsing so both surfaces accept the same values.
func exportFilter() (expense.Filter, error) {
	q := url.Values{}
	for key, val := range map[string]string{
		"from":     exportFrom,
		"to":       exportTo,
		"status":   exportStatus,
		"category": exportCategory,
	} {
		if val != "" {
			q.Set(key, val)
		}
	}
	return expense.ParseFilter(q, false)
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter, err := exportFilter()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer db.Close()

	gdb, err := initGorm(db, cfg.Observability.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to init gorm: %w", err)
	}

	authService := auth.NewService(authPostgres.NewRepository(gdb), auth.NewJWTTokenGenerator(cfg.Security), cfg.Security.BCryptCost, lg)
	limitService := limit.NewService(limitPostgres.NewLimitRepository(gdb), authService, events.NewEventBus(lg), lg)
	svc := report.NewService(
		expensePostgres.NewExpenseRepository(gdb),
		userPostgres.NewUserRepository(gdb),
		limitService,
		authService,
		lg,
	)

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	n, err := svc.Export(cmd.Context(), filter, w)
	if err != nil {
		return err
	}
	lg.Info("export written", "rows", n, "out", exportOut)
	return nil
}
