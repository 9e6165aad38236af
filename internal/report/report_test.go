package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	expenseDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/expense"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/limit"
	"github.com/frahmantamala/field-expense/internal/report"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/frahmantamala/field-expense/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

const adminID int64 = 99

type stubExpenses struct {
	rows []*expenseDatamodel.Expense
	err  error
}

func (s *stubExpenses) Find(ctx context.Context, f expense.Filter) ([]*expenseDatamodel.Expense, error) {
	return s.rows, s.err
}

type stubUsers struct{ users []*user.User }

func (s *stubUsers) List(ctx context.Context) ([]*user.User, error) { return s.users, nil }

type stubLimits struct{}

func (stubLimits) GetAll(ctx context.Context) ([]*limit.CategoryLimit, error) {
	return []*limit.CategoryLimit{{Category: category.Meal, DailyLimit: decimal.NewFromInt(50)}}, nil
}

type stubAuthorizer struct{}

func (stubAuthorizer) IsAdmin(ctx context.Context, actorID int64) (bool, error) {
	return actorID == adminID, nil
}

func row(id string, owner int64, c category.Category, desc, amount, status string) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          id,
		OwnerID:     owner,
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Category:    string(c),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Status:      status,
	}
}

var _ = Describe("Report", func() {
	var (
		expenses *stubExpenses
		svc      *report.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		expenses = &stubExpenses{rows: []*expenseDatamodel.Expense{
			row("a", 1, category.Travel, "Bus, return", "100", "pending"),
			row("b", 1, category.Cash, "advance", "40.5", "approved"),
			row("c", 7, category.Meal, "lunch", "12", "rejected"),
		}}
		users := &stubUsers{users: []*user.User{
			{ID: 1, Name: "Asha", IsApproved: true},
			{ID: 2, Email: "new@example.com"},
		}}
		svc = report.NewService(expenses, users, stubLimits{}, stubAuthorizer{}, logger)
	})

	Describe("WriteCSV", func() {
		It("writes the header on an empty export", func() {
			var buf bytes.Buffer
			Expect(report.WriteCSV(&buf, nil, nil)).To(Succeed())
			Expect(buf.String()).To(Equal("Date,User,Category,Description,Amount,Status\n"))
		})
	})

	Describe("Export", func() {
		It("projects records into rows with owner names", func() {
			var buf bytes.Buffer
			n, err := svc.Export(context.Background(), expense.Filter{}, &buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))

			lines, err := csv.NewReader(&buf).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([][]string{
				{"Date", "User", "Category", "Description", "Amount", "Status"},
				{"2024-03-05", "Asha", "travel", "Bus, return", "100.00", "pending"},
				{"2024-03-05", "Asha", "cash", "advance", "40.50", "approved"},
				{"2024-03-05", "7", "meal", "lunch", "12.00", "rejected"},
			}))
		})

		It("keeps exports admin-only over HTTP paths", func() {
			_, err := svc.ExportFor(context.Background(), 1, expense.Filter{}, io.Discard)
			Expect(errors.Is(err, internal.ErrUnauthorizedAccess)).To(BeTrue())
		})

		It("propagates load failures", func() {
			expenses.err = errors.New("db down")
			_, err := svc.Export(context.Background(), expense.Filter{}, io.Discard)
			Expect(err).To(MatchError(ContainSubstring("db down")))
		})
	})

	Describe("Overview", func() {
		It("rolls up records, users and limits", func() {
			o, err := svc.Overview(context.Background(), adminID, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())

			Expect(o.ExpenseCount).To(Equal(3))
			Expect(o.UserCount).To(Equal(2))
			Expect(o.PendingUsers).To(Equal(1))
			Expect(o.Limits).To(HaveLen(1))
			Expect(o.Breakdown.Amount(category.Travel).Equal(decimal.NewFromInt(100))).To(BeTrue())
			Expect(o.Summary.TotalExpense.Equal(decimal.NewFromInt(100))).To(BeTrue())
			Expect(o.Summary.TotalReceived.Equal(decimal.RequireFromString("40.5"))).To(BeTrue())
			Expect(o.StatusCounts[0].Count).To(Equal(1))
		})

		It("fails as a whole when one source fails", func() {
			expenses.err = errors.New("db down")
			_, err := svc.Overview(context.Background(), adminID, expense.Filter{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := report.NewHandler(transport.NewBaseHandler(logger), svc)
			router = chi.NewRouter()
			router.Get("/reports/overview", h.Overview)
			router.Get("/reports/expenses.csv", h.ExportCSV)
		})

		do := func(path string, actorID int64) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: actorID}))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("serves the CSV as an attachment", func() {
			rec := do("/reports/expenses.csv", adminID)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
			Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("attachment"))
			Expect(rec.Header().Get("X-Row-Count")).To(Equal("3"))
		})

		It("serves the overview as JSON", func() {
			rec := do("/reports/overview", adminID)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp report.OverviewResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Breakdown.Categories).To(HaveLen(len(category.All())))
			Expect(resp.StatusCounts).To(HaveLen(4))
		})

		It("refuses non-admins", func() {
			Expect(do("/reports/expenses.csv", 1).Code).To(Equal(http.StatusForbidden))
			Expect(do("/reports/overview", 1).Code).To(Equal(http.StatusForbidden))
		})
	})
})
