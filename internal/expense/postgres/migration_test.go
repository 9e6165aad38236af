package postgres

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/field-expense/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const expensesMigration = "../../../db/migrations/20250901000003_create_expenses.sql"

// upStatements returns the goose Up section of a migration as sqlite-compatible statements.
func upStatements(path string) []string {
	raw, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	body := string(raw)
	if i := strings.Index(body, "-- +goose Down"); i >= 0 {
		body = body[:i]
	}
	body = strings.ReplaceAll(body, "NOW()", "CURRENT_TIMESTAMP")

	var stmts []string
	for _, stmt := range strings.Split(body, ";") {
		if strings.TrimSpace(stmt) != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

var _ = Describe("expenses migration schema", func() {
	var (
		db   *gorm.DB
		repo expense.RepositoryAPI
		ctx  context.Context
		day  time.Time
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY)").Error).To(Succeed())
		Expect(db.Exec("CREATE TABLE missions (id VARCHAR(36) PRIMARY KEY)").Error).To(Succeed())
		for _, stmt := range upStatements(expensesMigration) {
			Expect(db.Exec(stmt).Error).To(Succeed())
		}

		repo = NewExpenseRepository(db)
		ctx = context.Background()
		day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("should accept a described row without an amount", func() {
		row := newRow(1, day, category.Meal, "0")
		row.Description = "team lunch"

		Expect(repo.CreateBatch(ctx, []*expenseDatamodel.Expense{row})).To(Succeed())
	})

	It("should accept an undescribed row with a positive amount", func() {
		row := newRow(1, day, category.Travel, "12.50")
		row.Description = ""

		Expect(repo.CreateBatch(ctx, []*expenseDatamodel.Expense{row})).To(Succeed())
	})

	It("should reject a row with neither description nor amount", func() {
		row := newRow(1, day, category.Meal, "0")
		row.Description = ""

		Expect(repo.CreateBatch(ctx, []*expenseDatamodel.Expense{row})).NotTo(Succeed())
	})

	It("should reject a negative amount", func() {
		row := newRow(1, day, category.Cash, "-5")

		Expect(repo.CreateBatch(ctx, []*expenseDatamodel.Expense{row})).NotTo(Succeed())
	})
})
