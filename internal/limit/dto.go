package limit

import (
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/shopspring/decimal"
)

type LimitResponse struct {
	Category   string    `json:"category"`
	DailyLimit string    `json:"daily_limit"`
	Unlimited  bool      `json:"unlimited"`
	UpdatedBy  *int64    `json:"updated_by,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type LimitsResponse struct {
	Limits []LimitResponse `json:"limits"`
}

type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCredit    bool   `json:"is_credit"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// UpdateLimitDTO carries the new ceiling as text so clients can send "1500.50".
type UpdateLimitDTO struct {
	DailyLimit string `json:"daily_limit"`
}

func (dto UpdateLimitDTO) Parse() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(dto.DailyLimit)
	if err != nil {
		return decimal.Zero, internal.NewValidationFieldError("daily_limit", "daily_limit must be a number", internal.ErrCodeInvalidAmount)
	}
	if amount.IsNegative() {
		return decimal.Zero, internal.NewValidationFieldError("daily_limit", "daily_limit cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return amount.Round(2), nil
}
