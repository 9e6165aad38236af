package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/core/common/validation"
)

type RowDTO struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	ImageRef    *string `json:"image_ref,omitempty"`
}

type CardDTO struct {
	Category string   `json:"category"`
	Rows     []RowDTO `json:"rows"`
}

// SubmitBatchDTO is the request body for POST /expenses and /expenses/preview.
type SubmitBatchDTO struct {
	MissionID string    `json:"mission_id,omitempty"`
	Date      string    `json:"date"`
	Cards     []CardDTO `json:"cards"`
}

// Validate checks shape only. Empty rows and uncategorized cards are legal
// here; Normalize drops them.
func (dto SubmitBatchDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("date", dto.Date).Required().Date()
	for i, card := range dto.Cards {
		field := fmt.Sprintf("cards[%d].category", i)
		validator.Field(field, card.Category).Custom(func(v interface{}) *internal.AppError {
			s := strings.TrimSpace(v.(string))
			if s == "" {
				return nil
			}
			if _, err := category.Parse(s); err != nil {
				return internal.NewValidationFieldError(field, fmt.Sprintf("unknown category %q", s), internal.ErrCodeInvalidCategory)
			}
			return nil
		})
		for j, row := range card.Rows {
			validator.Field(fmt.Sprintf("cards[%d].rows[%d].description", i, j), row.Description).
				MaxLength(500, internal.ErrCodeInvalidDescription)
		}
	}
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ToBatch converts a validated DTO. MissionID is resolved later by the service.
func (dto SubmitBatchDTO) ToBatch(ownerID int64, missionID string) (Batch, error) {
	date, appErr := validation.ParseDate("date", dto.Date)
	if appErr != nil {
		return Batch{}, appErr
	}

	b := Batch{
		OwnerID:   ownerID,
		MissionID: missionID,
		Date:      date,
		Cards:     make([]Card, 0, len(dto.Cards)),
	}
	for _, c := range dto.Cards {
		card := Card{Rows: make([]Row, 0, len(c.Rows))}
		if s := strings.TrimSpace(c.Category); s != "" {
			parsed, err := category.Parse(s)
			if err != nil {
				return Batch{}, internal.ErrInvalidCategory
			}
			card.Category = parsed
		}
		for _, r := range c.Rows {
			card.Rows = append(card.Rows, Row(r))
		}
		b.Cards = append(b.Cards, card)
	}
	return b, nil
}

type RejectExpenseDTO struct {
	Reason string `json:"reason"`
}

type RecordResponse struct {
	ID              string     `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	MissionID       string     `json:"mission_id"`
	Date            string     `json:"date"`
	Category        string     `json:"category"`
	Description     string     `json:"description"`
	Amount          string     `json:"amount"`
	SignedAmount    string     `json:"signed_amount"`
	ImageRef        *string    `json:"image_ref,omitempty"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ApproverID      *int64     `json:"approver_id,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type WarningResponse struct {
	ExpenseID string `json:"expense_id"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	Limit     string `json:"limit,omitempty"`
	Projected string `json:"projected"`
	OverLimit bool   `json:"over_limit"`
}

func (w LimitWarning) ToResponse() WarningResponse {
	resp := WarningResponse{
		ExpenseID: w.ExpenseID,
		Category:  string(w.Category),
		Date:      w.Date.Format(DateLayout),
		Projected: w.Projected.StringFixed(2),
		OverLimit: w.Exceeded,
	}
	if w.Limit.IsPositive() {
		resp.Limit = w.Limit.StringFixed(2)
	}
	return resp
}

type SubmitBatchResponse struct {
	Expenses  []RecordResponse  `json:"expenses"`
	Warnings  []WarningResponse `json:"warnings"`
	OverLimit int               `json:"over_limit"`
}

type ListResponse struct {
	Expenses []RecordResponse `json:"expenses"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func ToResponses(records []*Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToResponse())
	}
	return out
}

func ToWarningResponses(warnings []LimitWarning) []WarningResponse {
	out := make([]WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.ToResponse())
	}
	return out
}
