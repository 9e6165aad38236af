package expense

import (
	"fmt"
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSettled  Status = "settled"
)

var statuses = [...]Status{StatusPending, StatusApproved, StatusRejected, StatusSettled}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses[:])
	return out
}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Record is one persisted expense line. OwnerID and MissionID never change
// after creation; Status changes only through Approve, Reject and Settle.
type Record struct {
	ID              string
	OwnerID         int64
	MissionID       string
	Date            time.Time
	Category        category.Category
	Description     string
	Amount          decimal.Decimal
	ImageRef        *string
	Status          Status
	RejectionReason *string
	ApproverID      *int64
	ApprovedAt      *time.Time
	SettledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SignedAmount is the record's contribution to net spend. Cash advances count
// as credits.
func (r *Record) SignedAmount() decimal.Decimal {
	if r.Category.IsCredit() {
		return r.Amount.Neg()
	}
	return r.Amount
}

func (r *Record) DateKey() string {
	return r.Date.Format(DateLayout)
}

// Day truncates t to UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *Record) ToResponse() RecordResponse {
	return RecordResponse{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		MissionID:       r.MissionID,
		Date:            r.DateKey(),
		Category:        string(r.Category),
		Description:     r.Description,
		Amount:          r.Amount.StringFixed(2),
		SignedAmount:    r.SignedAmount().StringFixed(2),
		ImageRef:        r.ImageRef,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		ApproverID:      r.ApproverID,
		ApprovedAt:      r.ApprovedAt,
		SettledAt:       r.SettledAt,
		CreatedAt:       r.CreatedAt,
	}
}

func ToDataModel(r *Record) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		MissionID:       r.MissionID,
		Date:            r.Date,
		Category:        string(r.Category),
		Description:     r.Description,
		Amount:          r.Amount,
		ImageRef:        r.ImageRef,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		ApproverID:      r.ApproverID,
		ApprovedAt:      r.ApprovedAt,
		SettledAt:       r.SettledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Record {
	return &Record{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		MissionID:       e.MissionID,
		Date:            Day(e.Date),
		Category:        category.Category(e.Category),
		Description:     e.Description,
		Amount:          e.Amount,
		ImageRef:        e.ImageRef,
		Status:          Status(e.Status),
		RejectionReason: e.RejectionReason,
		ApproverID:      e.ApproverID,
		ApprovedAt:      e.ApprovedAt,
		SettledAt:       e.SettledAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*expenseDatamodel.Expense) []*Record {
	result := make([]*Record, len(rows))
	for i, e := range rows {
		result[i] = FromDataModel(e)
	}
	return result
}
