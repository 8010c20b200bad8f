package report

import (
	"strconv"
	"strings"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// UnknownComplaint labels records without a chief complaint.
const UnknownComplaint = "Unknown"

// MaxMedicationSlots is how many medications a row shows.
const MaxMedicationSlots = 2

const emptyCell = "-"

type groupKey struct {
	department string
	complaint  string
}

type group struct {
	key         groupKey
	count       int
	medications []model.Medication
}

// add records medications in the order they appear. Only the first two
// entries of a group ever reach a row.
func (g *group) add(m model.Medication) {
	if len(g.medications) >= MaxMedicationSlots {
		return
	}
	g.medications = append(g.medications, m)
}

// Aggregate groups the records that pass the filter by display department and
// chief complaint. Rows come out in order of first appearance.
func Aggregate(records []*model.PatientRecord, f model.ReportFilter) []model.AggregationRow {
	var order []*group
	groups := make(map[groupKey]*group)

	for _, p := range records {
		if !Matches(p, f) {
			continue
		}
		complaint := strings.TrimSpace(p.ChiefComplaint)
		if complaint == "" {
			complaint = UnknownComplaint
		}
		key := groupKey{department: DisplayDepartment(p), complaint: complaint}

		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, g)
		}
		g.count++

		med1, ok1 := ParseMedication(p.Medication1, p.Medication1Qty)
		if ok1 {
			g.add(med1)
		}
		if med2, ok2 := ParseMedication(p.Medication2, p.Medication2Qty); ok2 && (!ok1 || med2.Name != med1.Name) {
			g.add(med2)
		}
	}

	rows := make([]model.AggregationRow, 0, len(order))
	for _, g := range order {
		rows = append(rows, g.row())
	}
	return rows
}

// row renders a group. Totals are the per-incident quantity times the
// complaint count.
func (g *group) row() model.AggregationRow {
	r := model.AggregationRow{
		Department:       g.key.department,
		ChiefComplaint:   g.key.complaint,
		ComplaintCount:   g.count,
		Medication1:      emptyCell,
		Medication1Total: "0",
		Medication2:      emptyCell,
		Medication2Total: emptyCell,
	}
	if len(g.medications) > 0 {
		m := g.medications[0]
		r.Medication1 = m.Name
		r.Medication1Total = strconv.Itoa(m.Qty * g.count)
	}
	// a second entry repeating the first name is shown as empty
	if len(g.medications) > 1 && g.medications[1].Name != g.medications[0].Name {
		m := g.medications[1]
		r.Medication2 = m.Name
		r.Medication2Total = strconv.Itoa(m.Qty * g.count)
	}
	return r
}
