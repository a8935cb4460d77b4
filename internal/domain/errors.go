package domain

import (
	"fmt"
	"strings"
	"time"
)

// SchemaError reports required columns missing from an input table. It is
// fatal for the dataset: nothing is computed.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// OrderError reports the first timestamp that does not strictly follow its
// predecessor.
type OrderError struct {
	Index    int
	Previous time.Time
	Current  time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("timestamps not strictly increasing at row %d: %s follows %s",
		e.Index, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}

// CheckSchema returns a *SchemaError naming every required column absent from
// columns.
func CheckSchema(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// CheckOrder returns an *OrderError if hours are not strictly increasing in
// time.
func CheckOrder(hours []HourlyRecord) error {
	for i := 1; i < len(hours); i++ {
		if !hours[i].Timestamp.After(hours[i-1].Timestamp) {
			return &OrderError{Index: i, Previous: hours[i-1].Timestamp, Current: hours[i].Timestamp}
		}
	}
	return nil
}
