package expense_test

import (
	"errors"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func recordIn(status expense.Status) *expense.Record {
	return &expense.Record{
		ID:       "rec-1",
		OwnerID:  1,
		Category: category.Travel,
		Amount:   decimal.NewFromInt(100),
		Status:   status,
	}
}

var _ = Describe("Approval state machine", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	})

	It("should allow exactly the documented transitions", func() {
		legal := map[expense.Status]map[expense.Action]expense.Status{
			expense.StatusPending: {
				expense.ActionApprove: expense.StatusApproved,
				expense.ActionReject:  expense.StatusRejected,
			},
			expense.StatusApproved: {
				expense.ActionSettle: expense.StatusSettled,
			},
		}

		for _, status := range expense.Statuses() {
			for _, action := range []expense.Action{expense.ActionApprove, expense.ActionReject, expense.ActionSettle} {
				rec := recordIn(status)
				err := rec.Apply(action, 9, "over budget", now)

				if to, ok := legal[status][action]; ok {
					Expect(err).NotTo(HaveOccurred(), "%s from %s", action, status)
					Expect(rec.Status).To(Equal(to))
					continue
				}
				Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue(), "%s from %s", action, status)
				Expect(rec).To(Equal(recordIn(status)), "record must be unchanged")
			}
		}
	})

	Describe("Approve", func() {
		It("should stamp approver and time", func() {
			rec := recordIn(expense.StatusPending)

			Expect(rec.Approve(9, now)).To(Succeed())

			Expect(*rec.ApproverID).To(Equal(int64(9)))
			Expect(*rec.ApprovedAt).To(Equal(now))
			Expect(rec.SettledAt).To(BeNil())
			Expect(rec.RejectionReason).To(BeNil())
		})
	})

	Describe("Reject", func() {
		It("should require a reason and leave the record untouched", func() {
			for _, reason := range []string{"", "   "} {
				rec := recordIn(expense.StatusPending)

				err := rec.Reject(9, reason, now)

				Expect(errors.Is(err, internal.ErrMissingReason)).To(BeTrue())
				Expect(rec.Status).To(Equal(expense.StatusPending))
				Expect(rec.ApproverID).To(BeNil())
			}
		})

		It("should report a missing reason before legality", func() {
			rec := recordIn(expense.StatusSettled)
			err := rec.Reject(9, "", now)
			Expect(errors.Is(err, internal.ErrMissingReason)).To(BeTrue())
		})

		It("should store the trimmed reason", func() {
			rec := recordIn(expense.StatusPending)

			Expect(rec.Reject(9, "  no receipt ", now)).To(Succeed())

			Expect(rec.Status).To(Equal(expense.StatusRejected))
			Expect(*rec.RejectionReason).To(Equal("no receipt"))
			Expect(*rec.ApprovedAt).To(Equal(now))
		})
	})

	Describe("Settle", func() {
		It("should stamp the settlement time", func() {
			rec := recordIn(expense.StatusApproved)

			Expect(rec.Settle(now)).To(Succeed())

			Expect(rec.Status).To(Equal(expense.StatusSettled))
			Expect(*rec.SettledAt).To(Equal(now))
		})

		It("should refuse to settle a pending record", func() {
			rec := recordIn(expense.StatusPending)
			err := rec.Settle(now)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
			Expect(appErr.Details).To(HaveKeyWithValue("status", "pending"))
		})
	})
})
