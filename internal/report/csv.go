package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/frahmantamala/field-expense/internal/expense"
)

var csvHeader = []string{"Date", "User", "Category", "Description", "Amount", "Status"}

// WriteCSV writes one line per record. names maps owner ids to display
// names; unknown owners are written as their id.
func WriteCSV(w io.Writer, records []*expense.Record, names map[int64]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		owner, ok := names[r.OwnerID]
		if !ok || owner == "" {
			owner = strconv.FormatInt(r.OwnerID, 10)
		}
		row := []string{
			r.DateKey(),
			owner,
			string(r.Category),
			r.Description,
			r.Amount.StringFixed(2),
			string(r.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
