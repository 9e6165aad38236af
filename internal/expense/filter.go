package expense

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/core/common/validation"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Filter narrows a record read. Zero values mean "any". Limit 0 reads
// everything, which the ledger views rely on.
type Filter struct {
	OwnerID   *int64
	MissionID string
	From      *time.Time
	To        *time.Time
	Category  category.Category
	Status    Status
	Limit     int
	Offset    int
}

// ParseFilter reads owner-independent filter fields from query parameters.
// Paging is applied only when paged is true.
func ParseFilter(q url.Values, paged bool) (Filter, error) {
	var f Filter
	validator := validation.NewValidator()
	validator.Field("from", q.Get("from")).Date()
	validator.Field("to", q.Get("to")).Date()
	validator.Field("status", q.Get("status")).OneOf(statusNames(), internal.ErrCodeValidationFailed)
	validator.Field("category", q.Get("category")).Custom(func(v interface{}) *internal.AppError {
		if s := v.(string); s != "" {
			if _, err := category.Parse(s); err != nil {
				return internal.NewValidationFieldError("category", "unknown category", internal.ErrCodeInvalidCategory)
			}
		}
		return nil
	})
	if appErr := validator.Validate(); appErr != nil {
		return f, appErr
	}

	f.MissionID = strings.TrimSpace(q.Get("mission_id"))
	if s := q.Get("from"); s != "" {
		t, _ := time.Parse(DateLayout, s)
		f.From = &t
	}
	if s := q.Get("to"); s != "" {
		t, _ := time.Parse(DateLayout, s)
		f.To = &t
	}
	if s := q.Get("category"); s != "" {
		f.Category, _ = category.Parse(s)
	}
	f.Status = Status(q.Get("status"))

	if paged {
		f.Limit = DefaultPageSize
		if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= MaxPageSize {
			f.Limit = l
		}
		if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
			f.Offset = o
		}
	}
	return f, nil
}

func statusNames() []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
