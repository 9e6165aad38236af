package limit

import (
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/shopspring/decimal"
)

// Policy answers daily-limit questions against a snapshot of limits. It never
// refreshes the snapshot and its verdicts are advisory.
type Policy struct {
	limits map[category.Category]decimal.Decimal
}

// Evaluation is the outcome of checking one amount against its category limit.
type Evaluation struct {
	Category  category.Category `json:"category"`
	Date      time.Time         `json:"date"`
	Limit     decimal.Decimal   `json:"limit"`
	Projected decimal.Decimal   `json:"projected"`
	Exceeded  bool              `json:"exceeded"`
}

func NewPolicy(limits []*CategoryLimit) *Policy {
	p := &Policy{limits: make(map[category.Category]decimal.Decimal, len(limits))}
	for _, l := range limits {
		if l == nil {
			continue
		}
		p.limits[l.Category] = l.DailyLimit
	}
	return p
}

// Limit returns the configured ceiling and whether one is in force.
func (p *Policy) Limit(c category.Category) (decimal.Decimal, bool) {
	if p == nil {
		return decimal.Zero, false
	}
	l, ok := p.limits[c]
	if !ok || !l.IsPositive() {
		return decimal.Zero, false
	}
	return l, true
}

// Evaluate checks existing+proposed for category c on day against the limit.
// existing must already include the other in-flight records of the batch.
func (p *Policy) Evaluate(c category.Category, day time.Time, proposed, existing decimal.Decimal) Evaluation {
	projected := existing.Add(proposed)
	ev := Evaluation{
		Category:  c,
		Date:      day,
		Projected: projected,
	}

	l, ok := p.Limit(c)
	if !ok {
		return ev
	}
	ev.Limit = l
	ev.Exceeded = projected.GreaterThan(l)
	return ev
}

func (p *Policy) WouldExceed(c category.Category, day time.Time, proposed, existing decimal.Decimal) bool {
	return p.Evaluate(c, day, proposed, existing).Exceeded
}
