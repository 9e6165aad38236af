package limit

import (
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	limitDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/limit"
	"github.com/shopspring/decimal"
)

// CategoryLimit is the daily ceiling configured for one category. A zero
// DailyLimit means the category is unlimited.
type CategoryLimit struct {
	ID         int64             `json:"id"`
	Category   category.Category `json:"category"`
	DailyLimit decimal.Decimal   `json:"daily_limit"`
	UpdatedBy  *int64            `json:"updated_by,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (l *CategoryLimit) IsUnlimited() bool {
	return !l.DailyLimit.IsPositive()
}

func (l *CategoryLimit) SetDailyLimit(amount decimal.Decimal, actorID int64, now time.Time) {
	l.DailyLimit = amount
	l.UpdatedBy = &actorID
	l.UpdatedAt = now
}

func (l *CategoryLimit) ToResponse() LimitResponse {
	return LimitResponse{
		Category:   string(l.Category),
		DailyLimit: l.DailyLimit.StringFixed(2),
		Unlimited:  l.IsUnlimited(),
		UpdatedBy:  l.UpdatedBy,
		UpdatedAt:  l.UpdatedAt,
	}
}

func ToDataModel(l *CategoryLimit) *limitDatamodel.CategoryLimit {
	return &limitDatamodel.CategoryLimit{
		ID:         l.ID,
		Category:   string(l.Category),
		DailyLimit: l.DailyLimit,
		UpdatedBy:  l.UpdatedBy,
		UpdatedAt:  l.UpdatedAt,
	}
}

func FromDataModel(l *limitDatamodel.CategoryLimit) *CategoryLimit {
	return &CategoryLimit{
		ID:         l.ID,
		Category:   category.Category(l.Category),
		DailyLimit: l.DailyLimit,
		UpdatedBy:  l.UpdatedBy,
		UpdatedAt:  l.UpdatedAt,
	}
}
