package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	OwnerID         int64           `gorm:"column:owner_id;not null;index:idx_expenses_owner_date"`
	MissionID       string          `gorm:"column:mission_id;not null;index"`
	Date            time.Time       `gorm:"column:date;type:date;not null;index:idx_expenses_owner_date"`
	Category        string          `gorm:"column:category;not null"`
	Description     string          `gorm:"column:description"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null;check:chk_expenses_amount,amount >= 0 AND (amount > 0 OR description <> '')"`
	ImageRef        *string         `gorm:"column:image_ref"`
	Status          string          `gorm:"column:status;not null;default:pending;index"`
	RejectionReason *string         `gorm:"column:rejection_reason"`
	ApproverID      *int64          `gorm:"column:approver_id"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at"`
	SettledAt       *time.Time      `gorm:"column:settled_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
