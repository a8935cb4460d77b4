package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

var summaryHeader = []string{"date", "daily_CFL", "daily_PSe", "compound", "risk_state", "risk_multiplier"}

func summaryFields(r domain.SummaryRow) []string {
	return []string{
		r.Date.String(),
		strconv.FormatFloat(r.DailyCFL, 'f', 2, 64),
		strconv.FormatFloat(r.DailyPSe, 'f', 3, 64),
		strconv.FormatBool(r.Compound),
		r.RiskState.String(),
		strconv.FormatFloat(r.RiskMultiplier, 'f', 3, 64),
	}
}

// WriteSummaryCSV writes rows with a header line.
func WriteSummaryCSV(w io.Writer, rows []domain.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(summaryFields(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable prints rows as an aligned text table.
func WriteTable(w io.Writer, rows []domain.SummaryRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	writeRow := func(fields []string) {
		for _, f := range fields {
			fmt.Fprint(tw, f, "\t")
		}
		fmt.Fprintln(tw)
	}
	writeRow(summaryHeader)
	for _, r := range rows {
		writeRow(summaryFields(r))
	}
	return tw.Flush()
}
