package expense

import (
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/limit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one line of user input inside a card.
type Row struct {
	Description string
	Amount      string
	ImageRef    *string
}

// Card groups rows under one category selection. An empty Category means the
// user never picked one.
type Card struct {
	Category category.Category
	Rows     []Row
}

type Batch struct {
	OwnerID   int64
	MissionID string
	Date      time.Time
	Cards     []Card
}

// LimitWarning is the advisory limit verdict attached to one record.
type LimitWarning struct {
	ExpenseID string
	limit.Evaluation
}

// ParseAmount reads user-entered amount text, rounded to cents. Empty,
// non-numeric and negative input all become zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

// Normalize turns a batch into pending records. Cards without a category and
// rows with neither description nor amount are dropped silently. ErrEmptyBatch
// is returned only when nothing survives.
func Normalize(b Batch, now time.Time) ([]*Record, error) {
	day := Day(b.Date)
	var records []*Record

	for _, card := range b.Cards {
		if card.Category == "" {
			continue
		}
		for _, row := range card.Rows {
			desc := strings.TrimSpace(row.Description)
			amount := ParseAmount(row.Amount)
			if desc == "" && amount.IsZero() {
				continue
			}

			var imageRef *string
			if row.ImageRef != nil && strings.TrimSpace(*row.ImageRef) != "" {
				ref := strings.TrimSpace(*row.ImageRef)
				imageRef = &ref
			}

			records = append(records, &Record{
				ID:          uuid.NewString(),
				OwnerID:     b.OwnerID,
				MissionID:   b.MissionID,
				Date:        day,
				Category:    card.Category,
				Description: desc,
				Amount:      amount,
				ImageRef:    imageRef,
				Status:      StatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}

	if len(records) == 0 {
		return nil, internal.ErrEmptyBatch
	}
	return records, nil
}

// CheckLimits evaluates every record against policy. persisted holds the
// owner's already stored same-day totals per category. Each record sees the
// whole in-flight batch for its category, so records sharing a category share
// a verdict. The result is parallel to records.
func CheckLimits(records []*Record, policy *limit.Policy, persisted map[category.Category]decimal.Decimal) []LimitWarning {
	batchTotals := make(map[category.Category]decimal.Decimal)
	for _, r := range records {
		batchTotals[r.Category] = batchTotals[r.Category].Add(r.Amount)
	}

	warnings := make([]LimitWarning, len(records))
	for i, r := range records {
		existing := persisted[r.Category].Add(batchTotals[r.Category].Sub(r.Amount))
		warnings[i] = LimitWarning{
			ExpenseID:  r.ID,
			Evaluation: policy.Evaluate(r.Category, r.Date, r.Amount, existing),
		}
	}
	return warnings
}

// PersistedTotals sums stored records per category, ignoring sign. Rejected
// records no longer count against a limit.
func PersistedTotals(records []*Record) map[category.Category]decimal.Decimal {
	totals := make(map[category.Category]decimal.Decimal)
	for _, r := range records {
		if r.Status == StatusRejected {
			continue
		}
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}
	return totals
}

func CountExceeded(warnings []LimitWarning) int {
	n := 0
	for _, w := range warnings {
		if w.Exceeded {
			n++
		}
	}
	return n
}
