package limit

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryLimit struct {
	ID         int64           `gorm:"primaryKey"`
	Category   string          `gorm:"column:category;uniqueIndex;not null"`
	DailyLimit decimal.Decimal `gorm:"column:daily_limit;type:numeric(14,2);not null;default:0"`
	UpdatedBy  *int64          `gorm:"column:updated_by"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CategoryLimit) TableName() string {
	return "category_limits"
}
