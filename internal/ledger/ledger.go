// Package ledger aggregates expense records for display. Every function is
// pure and works on whatever snapshot it is handed.
package ledger

import (
	"sort"
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/shopspring/decimal"
)

// LiveTotal sums signed amounts. Cash lowers the total.
func LiveTotal(records []*expense.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.SignedAmount())
	}
	return total
}

func DailyTotal(records []*expense.Record, date time.Time) decimal.Decimal {
	day := expense.Day(date)
	total := decimal.Zero
	for _, r := range records {
		if expense.Day(r.Date).Equal(day) {
			total = total.Add(r.SignedAmount())
		}
	}
	return total
}

type DayGroup struct {
	Date    time.Time
	Records []*expense.Record
	Total   decimal.Decimal
}

// GroupByDate buckets records per calendar day, newest day first. Inside a
// day records follow category order and keep their input order on ties.
func GroupByDate(records []*expense.Record) []DayGroup {
	index := make(map[time.Time]int)
	var groups []DayGroup
	for _, r := range records {
		day := expense.Day(r.Date)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day, Total: decimal.Zero})
		}
		groups[i].Records = append(groups[i].Records, r)
		groups[i].Total = groups[i].Total.Add(r.SignedAmount())
	}

	sort.Slice(groups, func(a, b int) bool {
		return groups[a].Date.After(groups[b].Date)
	})
	for _, g := range groups {
		sort.SliceStable(g.Records, func(a, b int) bool {
			return g.Records[a].Category.Index() < g.Records[b].Category.Index()
		})
	}
	return groups
}

type CategoryAmount struct {
	Category category.Category
	Amount   decimal.Decimal
}

// Breakdown is gross spend per category. Max never drops below 1 so it can
// divide bar widths.
type Breakdown struct {
	Categories []CategoryAmount
	Max        decimal.Decimal
}

func (b Breakdown) Amount(c category.Category) decimal.Decimal {
	for _, ca := range b.Categories {
		if ca.Category == c {
			return ca.Amount
		}
	}
	return decimal.Zero
}

// CategoryBreakdown ignores sign and reports every category, zero-filled.
func CategoryBreakdown(records []*expense.Record) Breakdown {
	all := category.All()
	sums := make([]decimal.Decimal, len(all))
	for i := range sums {
		sums[i] = decimal.Zero
	}
	for _, r := range records {
		if i := r.Category.Index(); i >= 0 {
			sums[i] = sums[i].Add(r.Amount)
		}
	}

	b := Breakdown{Categories: make([]CategoryAmount, len(all)), Max: decimal.NewFromInt(1)}
	for i, c := range all {
		b.Categories[i] = CategoryAmount{Category: c, Amount: sums[i]}
		if sums[i].GreaterThan(b.Max) {
			b.Max = sums[i]
		}
	}
	return b
}

type Classification string

const (
	Surplus  Classification = "surplus"
	Deficit  Classification = "deficit"
	Balanced Classification = "balanced"
)

type Standing struct {
	Amount         decimal.Decimal
	Classification Classification
}

// Balance is received minus spent.
func Balance(received, spent decimal.Decimal) Standing {
	amount := received.Sub(spent)
	s := Standing{Amount: amount, Classification: Balanced}
	switch amount.Sign() {
	case 1:
		s.Classification = Surplus
	case -1:
		s.Classification = Deficit
	}
	return s
}

type Summary struct {
	TotalReceived decimal.Decimal
	TotalExpense  decimal.Decimal
	TodayReceived decimal.Decimal
	TodayExpense  decimal.Decimal
	Balance       Standing
}

// Summarize splits records into cash received and non-cash spend, overall
// and for today. Rejected records are not money that moved and are skipped.
func Summarize(records []*expense.Record, today time.Time) Summary {
	day := expense.Day(today)
	s := Summary{
		TotalReceived: decimal.Zero,
		TotalExpense:  decimal.Zero,
		TodayReceived: decimal.Zero,
		TodayExpense:  decimal.Zero,
	}
	for _, r := range records {
		if r.Status == expense.StatusRejected {
			continue
		}
		isToday := r.Date.Equal(day)
		if r.Category.IsCredit() {
			s.TotalReceived = s.TotalReceived.Add(r.Amount)
			if isToday {
				s.TodayReceived = s.TodayReceived.Add(r.Amount)
			}
			continue
		}
		s.TotalExpense = s.TotalExpense.Add(r.Amount)
		if isToday {
			s.TodayExpense = s.TodayExpense.Add(r.Amount)
		}
	}
	s.Balance = Balance(s.TotalReceived, s.TotalExpense)
	return s
}

type StatusCount struct {
	Status expense.Status
	Count  int
}

// StatusCounts counts records per status, every status listed.
func StatusCounts(records []*expense.Record) []StatusCount {
	statuses := expense.Statuses()
	counts := make(map[expense.Status]int, len(statuses))
	for _, r := range records {
		counts[r.Status]++
	}
	out := make([]StatusCount, len(statuses))
	for i, st := range statuses {
		out[i] = StatusCount{Status: st, Count: counts[st]}
	}
	return out
}
