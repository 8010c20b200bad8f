package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// RecordsFilename is the download name of the records export.
const RecordsFilename = "patient_records.csv"

// PrintTemplateName is the name under which PrintTemplate is registered.
const PrintTemplateName = "print.tmpl"

// Table is an already computed report: a header row and string cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// StatsTable renders aggregation rows as a table.
func StatsTable(rows []model.AggregationRow) Table {
	t := Table{Title: "Department Statistics", Headers: model.StatsHeaders, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Cells())
	}
	return t
}

// RecordsTable renders patient records as a table.
func RecordsTable(records []*model.PatientRecord) Table {
	t := Table{Title: "Patient Records", Headers: model.RecordHeaders, Rows: make([][]string, 0, len(records))}
	for _, p := range records {
		t.Rows = append(t.Rows, model.RecordCells(p))
	}
	return t
}

// WriteCSV writes the header row followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// StatsFilename names a statistics export after its filter, e.g.
// "Status_HR_March_2024.csv".
func StatsFilename(f model.ReportFilter) string {
	year := "All Years"
	if f.Year != nil {
		year = strconv.Itoa(*f.Year)
	}
	return fmt.Sprintf("Status_%s_%s_%s.csv", departmentLabel(f.Department), monthLabel(f.Month), year)
}

func departmentLabel(d string) string {
	switch d {
	case "", model.DepartmentAll:
		return "All Departments"
	case model.DepartmentOther:
		return BucketOther
	}
	return d
}

func monthLabel(m string) string {
	if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
		return time.Month(n).String()
	}
	return "All Months"
}

// PrintTemplate renders a Table as a standalone printable page.
var PrintTemplate = template.Must(template.New(PrintTemplateName).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table { border-collapse: collapse; width: 100%; font-family: sans-serif; font-size: 12px; }
th, td { border: 1px solid #444; padding: 4px 6px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body onload="window.print()">
<h2>{{.Title}}</h2>
{{if .Rows}}<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>{{else}}<p>No records match the selected filters.</p>{{end}}
</body>
</html>
`))
