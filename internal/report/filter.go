package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// BucketOther groups blank and unknown department values.
const BucketOther = "Other"

// KnownDepartments is the reporting vocabulary. It differs from the form's
// department options: "Guest" is known and "Other" is a bucket, not a name.
var KnownDepartments = []string{
	"Finance and Corporate Services", "Front Office", "HR", "Guest", "Engineering",
	"Life Sciences & Education", "Base Camp", "Motorpool", "Office of the VP",
	"Parks and Adventure", "Park Grounds", "Sales & Marketing", "Safari Camp",
	"Santican Cattle Station", "Security", "Tenants-Outpost", "Tenants-Auntie Anne's",
	"Tenants-Pizzeria Michelangelo", "Tenants-Convenient Store", "Tunnel Garden",
	"ML-Agri Ventures",
}

// dateLayouts are tried in order when reading a walk-in date.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04",
	"01/02/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseWalkInDate parses a stored walk-in date. ok is false for blank or
// unparseable values.
func ParseWalkInDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseReportFilter builds a filter from query values. Blank department and
// month mean "all"; a blank year leaves the year unset.
func ParseReportFilter(department, month, year string) (model.ReportFilter, error) {
	f := model.ReportFilter{
		Department: strings.TrimSpace(department),
		Month:      strings.ToLower(strings.TrimSpace(month)),
	}

	switch strings.ToLower(f.Department) {
	case "", model.DepartmentAll:
		f.Department = model.DepartmentAll
	case model.DepartmentOther:
		f.Department = model.DepartmentOther
	}

	if f.Month == "" {
		f.Month = model.MonthAll
	}
	if f.Month != model.MonthAll {
		m, err := strconv.Atoi(f.Month)
		if err != nil || m < 1 || m > 12 {
			return model.ReportFilter{}, fmt.Errorf("invalid month %q: want \"all\" or 1-12", month)
		}
		f.Month = strconv.Itoa(m)
	}

	if y := strings.TrimSpace(year); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil || v < 1 {
			return model.ReportFilter{}, fmt.Errorf("invalid year %q", year)
		}
		f.Year = &v
	}
	return f, nil
}

// MatchesDate reports whether the record's walk-in date passes the month and
// year filters. Records without a parseable date never match.
func MatchesDate(p *model.PatientRecord, f model.ReportFilter) bool {
	d, ok := ParseWalkInDate(p.VisitDate())
	if !ok {
		return false
	}
	if f.Month != "" && f.Month != model.MonthAll {
		m, err := strconv.Atoi(f.Month)
		if err != nil || time.Month(m) != d.Month() {
			return false
		}
	}
	if f.Year != nil && *f.Year != d.Year() {
		return false
	}
	return true
}

// GetDepartment returns the department bucket of a record.
func GetDepartment(p *model.PatientRecord) string {
	dept := strings.TrimSpace(p.DepartmentValue())
	if dept == "" || !slices.Contains(KnownDepartments, dept) {
		return BucketOther
	}
	return dept
}

// DisplayDepartment is the row label: the bucket for known departments, and
// the raw text (or "Other" when blank) for the Other bucket.
func DisplayDepartment(p *model.PatientRecord) string {
	bucket := GetDepartment(p)
	if bucket != BucketOther {
		return bucket
	}
	if raw := strings.TrimSpace(p.DepartmentValue()); raw != "" {
		return raw
	}
	return BucketOther
}

// MatchesDepartment applies the department selection to a record's bucket.
func MatchesDepartment(p *model.PatientRecord, f model.ReportFilter) bool {
	switch f.Department {
	case "", model.DepartmentAll:
		return true
	case model.DepartmentOther:
		return GetDepartment(p) == BucketOther
	default:
		return GetDepartment(p) == f.Department
	}
}

// Matches combines the soft-delete, date and department filters.
func Matches(p *model.PatientRecord, f model.ReportFilter) bool {
	return !p.IsDeleted && MatchesDate(p, f) && MatchesDepartment(p, f)
}

// Select returns the records that pass the filter, in input order.
func Select(records []*model.PatientRecord, f model.ReportFilter) []*model.PatientRecord {
	out := make([]*model.PatientRecord, 0, len(records))
	for _, p := range records {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}
