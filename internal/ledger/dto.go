package ledger

import (
	"github.com/frahmantamala/field-expense/internal/expense"
)

type DayGroupResponse struct {
	Date     string                   `json:"date"`
	Total    string                   `json:"total"`
	Expenses []expense.RecordResponse `json:"expenses"`
}

type TimelineResponse struct {
	Days []DayGroupResponse `json:"days"`
}

func ToTimelineResponse(groups []DayGroup) TimelineResponse {
	resp := TimelineResponse{Days: make([]DayGroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Days = append(resp.Days, DayGroupResponse{
			Date:     g.Date.Format(expense.DateLayout),
			Total:    g.Total.StringFixed(2),
			Expenses: expense.ToResponses(g.Records),
		})
	}
	return resp
}

type BalanceResponse struct {
	Amount         string         `json:"amount"`
	Classification Classification `json:"classification"`
}

func (s Standing) ToResponse() BalanceResponse {
	return BalanceResponse{
		Amount:         s.Amount.StringFixed(2),
		Classification: s.Classification,
	}
}

type SummaryResponse struct {
	TotalReceived string          `json:"total_received"`
	TotalExpense  string          `json:"total_expense"`
	TodayReceived string          `json:"today_received"`
	TodayExpense  string          `json:"today_expense"`
	Balance       BalanceResponse `json:"balance"`
}

func (s Summary) ToResponse() SummaryResponse {
	return SummaryResponse{
		TotalReceived: s.TotalReceived.StringFixed(2),
		TotalExpense:  s.TotalExpense.StringFixed(2),
		TodayReceived: s.TodayReceived.StringFixed(2),
		TodayExpense:  s.TodayExpense.StringFixed(2),
		Balance:       s.Balance.ToResponse(),
	}
}

type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type BreakdownResponse struct {
	Categories []CategoryAmountResponse `json:"categories"`
	Max        string                   `json:"max"`
}

func (b Breakdown) ToResponse() BreakdownResponse {
	resp := BreakdownResponse{
		Categories: make([]CategoryAmountResponse, 0, len(b.Categories)),
		Max:        b.Max.StringFixed(2),
	}
	for _, ca := range b.Categories {
		resp.Categories = append(resp.Categories, CategoryAmountResponse{
			Category: string(ca.Category),
			Amount:   ca.Amount.StringFixed(2),
		})
	}
	return resp
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func ToStatusCountResponses(counts []StatusCount) []StatusCountResponse {
	out := make([]StatusCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, StatusCountResponse{Status: string(c.Status), Count: c.Count})
	}
	return out
}

// PreviewResponse is the live total of an unsaved batch.
type PreviewResponse struct {
	LiveTotal string                    `json:"live_total"`
	Expenses  []expense.RecordResponse  `json:"expenses"`
	Warnings  []expense.WarningResponse `json:"warnings"`
	OverLimit int                       `json:"over_limit"`
}
