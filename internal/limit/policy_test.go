package limit_test

import (
	"time"

	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/limit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Policy", func() {
	var (
		policy *limit.Policy
		day    time.Time
	)

	BeforeEach(func() {
		day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
		policy = limit.NewPolicy([]*limit.CategoryLimit{
			{Category: category.Meal, DailyLimit: decimal.NewFromInt(100)},
			{Category: category.Travel, DailyLimit: decimal.Zero},
		})
	})

	DescribeTable("WouldExceed",
		func(c category.Category, proposed, existing string, expected bool) {
			got := policy.WouldExceed(c, day, decimal.RequireFromString(proposed), decimal.RequireFromString(existing))
			Expect(got).To(Equal(expected))
		},
		Entry("under the limit", category.Meal, "40", "50", false),
		Entry("exactly at the limit", category.Meal, "50", "50", false),
		Entry("one cent over", category.Meal, "50.01", "50", true),
		Entry("zero limit never exceeds", category.Travel, "1000000", "0", false),
		Entry("missing limit never exceeds", category.Hotel, "1000000", "5000", false),
	)

	It("should be monotone in the proposed amount", func() {
		existing := decimal.NewFromInt(30)
		exceededOnce := false
		for cents := int64(0); cents <= 20000; cents += 250 {
			proposed := decimal.New(cents, -2)
			got := policy.WouldExceed(category.Meal, day, proposed, existing)
			if exceededOnce {
				Expect(got).To(BeTrue(), "amount %s", proposed)
			}
			exceededOnce = exceededOnce || got
		}
		Expect(exceededOnce).To(BeTrue())
	})

	It("should report the projected total and limit", func() {
		ev := policy.Evaluate(category.Meal, day, decimal.NewFromInt(70), decimal.NewFromInt(45))
		Expect(ev.Exceeded).To(BeTrue())
		Expect(ev.Limit.Equal(decimal.NewFromInt(100))).To(BeTrue())
		Expect(ev.Projected.Equal(decimal.NewFromInt(115))).To(BeTrue())
		Expect(ev.Date).To(Equal(day))
	})

	It("should treat a nil policy as unlimited", func() {
		var p *limit.Policy
		_, ok := p.Limit(category.Meal)
		Expect(ok).To(BeFalse())
	})
})
