package ledger_test

import (
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func rec(id string, day time.Time, c category.Category, amount int64) *expense.Record {
	return &expense.Record{
		ID:       id,
		Date:     day,
		Category: c,
		Amount:   decimal.NewFromInt(amount),
		Status:   expense.StatusPending,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var _ = Describe("Ledger", func() {
	var (
		d1 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
		d2 = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	)

	Describe("LiveTotal", func() {
		It("treats cash as a credit", func() {
			records := []*expense.Record{
				rec("a", d1, category.Travel, 100),
				rec("b", d1, category.Cash, 40),
			}
			Expect(ledger.LiveTotal(records).Equal(decimal.NewFromInt(60))).To(BeTrue())
		})

		It("is zero for nothing", func() {
			Expect(ledger.LiveTotal(nil).IsZero()).To(BeTrue())
		})

		It("can go negative", func() {
			records := []*expense.Record{rec("a", d1, category.Cash, 500), rec("b", d1, category.Meal, 120)}
			Expect(ledger.LiveTotal(records).Equal(decimal.NewFromInt(-380))).To(BeTrue())
		})
	})

	Describe("DailyTotal", func() {
		It("only counts the requested day", func() {
			records := []*expense.Record{
				rec("a", d1, category.Travel, 100),
				rec("b", d2, category.Meal, 30),
				rec("c", d2, category.Cash, 10),
			}
			Expect(ledger.DailyTotal(records, d2.Add(13*time.Hour)).Equal(decimal.NewFromInt(20))).To(BeTrue())
			Expect(ledger.DailyTotal(records, d1).Equal(decimal.NewFromInt(100))).To(BeTrue())
		})

		It("matches records whose date carries a time or a zone", func() {
			jakarta := time.FixedZone("WIB", 7*60*60)
			records := []*expense.Record{
				rec("a", d2.Add(9*time.Hour), category.Travel, 100),
				rec("b", time.Date(2024, 3, 5, 0, 0, 0, 0, jakarta), category.Meal, 30),
				rec("c", d1.Add(23*time.Hour), category.Meal, 7),
			}

			total := ledger.DailyTotal(records, d2)
			Expect(total.Equal(decimal.NewFromInt(130))).To(BeTrue())

			groups := ledger.GroupByDate(records)
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Total.Equal(total)).To(BeTrue())
		})
	})

	Describe("GroupByDate", func() {
		It("orders days newest first and categories in display order", func() {
			records := []*expense.Record{
				rec("other-1", d1, category.Other, 5),
				rec("meal-2", d2, category.Meal, 20),
				rec("travel-1", d1, category.Travel, 10),
				rec("cash-2", d2, category.Cash, 50),
				rec("travel-2", d2, category.Travel, 30),
				rec("meal-2b", d2, category.Meal, 25),
			}

			groups := ledger.GroupByDate(records)
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Date).To(Equal(d2))
			Expect(groups[1].Date).To(Equal(d1))

			var ids []string
			for _, r := range groups[0].Records {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"travel-2", "meal-2", "meal-2b", "cash-2"}))
			Expect(groups[0].Total.Equal(decimal.NewFromInt(25))).To(BeTrue())

			Expect(groups[1].Records[0].ID).To(Equal("travel-1"))
			Expect(groups[1].Total.Equal(decimal.NewFromInt(15))).To(BeTrue())
		})

		It("returns no groups for no records", func() {
			Expect(ledger.GroupByDate(nil)).To(BeEmpty())
		})
	})

	Describe("CategoryBreakdown", func() {
		It("reports gross amounts for every category", func() {
			records := []*expense.Record{
				rec("a", d1, category.Travel, 100),
				rec("b", d2, category.Travel, 50),
				rec("c", d2, category.Cash, 400),
			}
			b := ledger.CategoryBreakdown(records)

			Expect(b.Categories).To(HaveLen(len(category.All())))
			Expect(b.Amount(category.Travel).Equal(decimal.NewFromInt(150))).To(BeTrue())
			Expect(b.Amount(category.Cash).Equal(decimal.NewFromInt(400))).To(BeTrue())
			Expect(b.Amount(category.Hotel).IsZero()).To(BeTrue())
			Expect(b.Max.Equal(decimal.NewFromInt(400))).To(BeTrue())
		})

		It("floors the maximum at one", func() {
			Expect(ledger.CategoryBreakdown(nil).Max.Equal(decimal.NewFromInt(1))).To(BeTrue())
			small := []*expense.Record{{Date: d1, Category: category.Meal, Amount: dec("0.5")}}
			Expect(ledger.CategoryBreakdown(small).Max.Equal(decimal.NewFromInt(1))).To(BeTrue())
		})
	})

	DescribeTable("Balance",
		func(received, spent int64, amount int64, class ledger.Classification) {
			s := ledger.Balance(decimal.NewFromInt(received), decimal.NewFromInt(spent))
			Expect(s.Amount.Equal(decimal.NewFromInt(amount))).To(BeTrue())
			Expect(s.Classification).To(Equal(class))
		},
		Entry("balanced", int64(1000), int64(1000), int64(0), ledger.Balanced),
		Entry("deficit", int64(1000), int64(1200), int64(-200), ledger.Deficit),
		Entry("surplus", int64(1200), int64(1000), int64(200), ledger.Surplus),
	)

	Describe("Summarize", func() {
		It("splits received from spent and skips rejected records", func() {
			rejected := rec("r", d2, category.Hotel, 999)
			rejected.Status = expense.StatusRejected
			records := []*expense.Record{
				rec("a", d1, category.Cash, 1000),
				rec("b", d1, category.Travel, 300),
				rec("c", d2, category.Cash, 200),
				rec("d", d2, category.Meal, 50),
				rejected,
			}

			s := ledger.Summarize(records, d2.Add(9*time.Hour))
			Expect(s.TotalReceived.Equal(decimal.NewFromInt(1200))).To(BeTrue())
			Expect(s.TotalExpense.Equal(decimal.NewFromInt(350))).To(BeTrue())
			Expect(s.TodayReceived.Equal(decimal.NewFromInt(200))).To(BeTrue())
			Expect(s.TodayExpense.Equal(decimal.NewFromInt(50))).To(BeTrue())
			Expect(s.Balance.Classification).To(Equal(ledger.Surplus))
			Expect(s.Balance.Amount.Equal(decimal.NewFromInt(850))).To(BeTrue())
		})
	})

	Describe("StatusCounts", func() {
		It("lists every status", func() {
			approved := rec("b", d1, category.Meal, 1)
			approved.Status = expense.StatusApproved
			counts := ledger.StatusCounts([]*expense.Record{rec("a", d1, category.Meal, 1), approved, rec("c", d1, category.Meal, 1)})

			Expect(counts).To(Equal([]ledger.StatusCount{
				{Status: expense.StatusPending, Count: 2},
				{Status: expense.StatusApproved, Count: 1},
				{Status: expense.StatusRejected, Count: 0},
				{Status: expense.StatusSettled, Count: 0},
			}))
		})
	})
})
