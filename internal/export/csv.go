// Package export serializes payroll reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/server"
)

var contractorHeader = []string{"user_id", "name", "hours", "rate", "rate_mixed", "pay"}

var projectHeader = []string{"project_id", "name", "hours", "pay"}

// WriteContractorCSV writes the per-contractor rollup. An empty report
// still produces the header row.
func WriteContractorCSV(w io.Writer, report *server.PayrollReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contractorHeader); err != nil {
		return err
	}
	for _, row := range report.ByContractor {
		record := []string{
			row.UserID.String(),
			row.Name,
			money(row.Hours),
			money(row.Rate),
			strconv.FormatBool(row.RateMixed),
			money(row.Pay),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProjectCSV writes the per-project rollup.
func WriteProjectCSV(w io.Writer, report *server.PayrollReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(projectHeader); err != nil {
		return err
	}
	for _, row := range report.ByProject {
		record := []string{
			row.ProjectID.String(),
			row.Name,
			money(row.Hours),
			money(row.Pay),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
