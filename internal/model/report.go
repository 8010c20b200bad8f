package model

import "strconv"

// MonthAll disables month filtering.
const MonthAll = "all"

// Department selections understood by the report filter besides exact names.
const (
	DepartmentAll   = "all"
	DepartmentOther = "other"
)

// ReportFilter replaces the page-level filter state of the statistics view.
type ReportFilter struct {
	Department string `json:"department"`
	// Month is "all" or 1..12.
	Month string `json:"month"`
	// Year is nil when unset.
	Year *int `json:"year,omitempty"`
}

type Medication struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// AggregationRow is one (department, complaint) line of the statistics table.
type AggregationRow struct {
	Department       string `json:"department"`
	ChiefComplaint   string `json:"chief_complaint"`
	ComplaintCount   int    `json:"complaint_count"`
	Medication1      string `json:"medication1"`
	Medication1Total string `json:"medication1_total"`
	Medication2      string `json:"medication2"`
	Medication2Total string `json:"medication2_total"`
}

// Cells returns the row in table column order.
func (r AggregationRow) Cells() []string {
	return []string{
		r.Department,
		r.ChiefComplaint,
		strconv.Itoa(r.ComplaintCount),
		r.Medication1,
		r.Medication1Total,
		r.Medication2,
		r.Medication2Total,
	}
}

// StatsHeaders are the column titles of the statistics table.
var StatsHeaders = []string{
	"Department", "Chief Complaint", "Complaint Count", "Medication1", "Count", "Medication2", "Count",
}

// RecordHeaders are the column titles of the records table.
var RecordHeaders = []string{
	"Patient ID", "Name", "Age", "Sex", "Address", "Walk-in Date",
	"Department", "Civil Status", "Chief Complaint", "History", "Medication", "Type",
}

// RecordCells returns a record in records-table column order.
func RecordCells(p *PatientRecord) []string {
	return []string{
		p.PatientNumber,
		p.PatientName,
		p.PatientAge,
		p.Sex,
		p.PatientAddress,
		p.WalkInDate,
		p.DepartmentValue(),
		p.CivilStatusValue(),
		p.ChiefComplaint,
		p.History,
		p.MedicationDisplay(),
		string(p.Type),
	}
}
