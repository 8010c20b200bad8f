package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/model"
)

var allTime = model.ReportFilter{Department: model.DepartmentAll, Month: model.MonthAll}

func employeeVisit(dept, complaint, med1, med2 string) *model.PatientRecord {
	return &model.PatientRecord{
		Type:           model.PatientTypeEmployee,
		Department:     strPtr(dept),
		WalkInDate:     "2024-03-15",
		ChiefComplaint: complaint,
		Medication1:    med1,
		Medication2:    med2,
	}
}

func TestAggregate_CountTimesQuantity(t *testing.T) {
	records := []*model.PatientRecord{
		employeeVisit("Engineering", "Fever", "Paracetamol (1 pcs)", ""),
		employeeVisit("Engineering", "Fever", "Paracetamol (1 pcs)", ""),
	}
	rows := Aggregate(records, allTime)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "Engineering", r.Department)
	assert.Equal(t, "Fever", r.ChiefComplaint)
	assert.Equal(t, 2, r.ComplaintCount)
	assert.Equal(t, "Paracetamol", r.Medication1)
	assert.Equal(t, "2", r.Medication1Total)
	assert.Equal(t, "-", r.Medication2)
	assert.Equal(t, "-", r.Medication2Total)
}

func TestAggregate_GroupsInFirstAppearanceOrder(t *testing.T) {
	records := []*model.PatientRecord{
		employeeVisit("HR", "Cough", "", ""),
		employeeVisit("Kitchen", "Fever", "", ""),
		employeeVisit("HR", "Fever", "", ""),
		employeeVisit("HR", "Cough", "", ""),
		{Type: model.PatientTypeGuest, WalkInDate: "2024-03-02", ChiefComplaint: ""},
	}
	rows := Aggregate(records, allTime)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"HR", "Cough", "2"}, rows[0].Cells()[:3])
	assert.Equal(t, []string{"Kitchen", "Fever", "1"}, rows[1].Cells()[:3])
	assert.Equal(t, []string{"HR", "Fever", "1"}, rows[2].Cells()[:3])
	assert.Equal(t, []string{"Other", UnknownComplaint, "1"}, rows[3].Cells()[:3])
	assert.Equal(t, "-", rows[3].Medication1)
	assert.Equal(t, "0", rows[3].Medication1Total)
}

func TestAggregate_MedicationSlotsFollowRecordOrder(t *testing.T) {
	records := []*model.PatientRecord{
		employeeVisit("HR", "Headache", "Paracetamol", ""),
		employeeVisit("HR", "Headache", "Paracetamol", "Loperamide"),
	}
	rows := Aggregate(records, allTime)
	require.Len(t, rows, 1)

	// the second slot holds Paracetamol again, so it renders empty
	r := rows[0]
	assert.Equal(t, 2, r.ComplaintCount)
	assert.Equal(t, "Paracetamol", r.Medication1)
	assert.Equal(t, "2", r.Medication1Total)
	assert.Equal(t, "-", r.Medication2)
	assert.Equal(t, "-", r.Medication2Total)
}

func TestAggregate_SecondSlotFromFirstRecords(t *testing.T) {
	records := []*model.PatientRecord{
		employeeVisit("HR", "Headache", "Paracetamol (2 pcs)", "Paracetamol (1 pcs)"),
		employeeVisit("HR", "Headache", "Mefenamic Acid", "Antacid (3 pcs)"),
		employeeVisit("HR", "Headache", "Paracetamol (2 pcs)", ""),
	}
	rows := Aggregate(records, allTime)
	require.Len(t, rows, 1)

	// same-name entries within one record collapse; across records they do not
	r := rows[0]
	assert.Equal(t, 3, r.ComplaintCount)
	assert.Equal(t, "Paracetamol", r.Medication1)
	assert.Equal(t, "6", r.Medication1Total)
	assert.Equal(t, "Mefenamic Acid", r.Medication2)
	assert.Equal(t, "3", r.Medication2Total)
}

func TestAggregate_LegacyQuantityKeys(t *testing.T) {
	p := employeeVisit("Security", "Toothache", "Mefenamic Acid", "Antacid")
	p.Medication1Qty = "2 tabs"
	p.Medication2Qty = float64(4)

	rows := Aggregate([]*model.PatientRecord{p}, allTime)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].Medication1Total)
	assert.Equal(t, "4", rows[0].Medication2Total)
}

func TestAggregate_AppliesFilter(t *testing.T) {
	march := employeeVisit("HR", "Fever", "", "")
	april := employeeVisit("HR", "Fever", "", "")
	april.WalkInDate = "2024-04-01"
	deleted := employeeVisit("HR", "Fever", "", "")
	deleted.IsDeleted = true

	f := model.ReportFilter{Department: "HR", Month: "3", Year: intPtr(2024)}
	rows := Aggregate([]*model.PatientRecord{march, april, deleted}, f)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ComplaintCount)

	assert.Empty(t, Aggregate([]*model.PatientRecord{march}, model.ReportFilter{Department: model.DepartmentOther, Month: model.MonthAll}))
}

// submit drives a form through the reducer and the normalizer.
func submit(t *testing.T, pt model.PatientType, pairs ...string) *model.PatientRecord {
	t.Helper()
	s, err := form.NewState(pt, nil)
	require.NoError(t, err)
	base := []string{
		form.FieldLastName, "Reyes",
		form.FieldFirstName, "Jo",
		form.FieldPatientAge, "40",
		form.FieldSex, "M",
		form.FieldPatientAddress, "Main St",
		form.FieldWalkInDate, "2024-03-15",
	}
	pairs = append(base, pairs...)
	for i := 0; i < len(pairs); i += 2 {
		s, err = form.Change(s, pairs[i], pairs[i+1])
		require.NoError(t, err)
	}
	rec, err := form.Normalize(s, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	return rec
}

func TestAggregate_RoundTripFromNormalizer(t *testing.T) {
	records := []*model.PatientRecord{
		submit(t, model.PatientTypeEmployee,
			form.FieldDepartment, "Engineering",
			form.FieldChiefComplaint, form.OptionAnimalBite,
			form.AnimalTypeFieldID, "Dog",
			form.FieldMedication1, form.OptionOther,
			form.OtherFieldID(form.FieldMedication1), "Vitamin C",
			form.QuantityFieldID(form.FieldMedication1), "5",
		),
		// same entry without the optional quantity
		submit(t, model.PatientTypeEmployee,
			form.FieldDepartment, "Engineering",
			form.FieldChiefComplaint, form.OptionAnimalBite,
			form.AnimalTypeFieldID, "Dog",
			form.FieldMedication1, form.OptionOther,
			form.OtherFieldID(form.FieldMedication1), "Vitamin C",
		),
		submit(t, model.PatientTypeEmployee,
			form.FieldDepartment, form.OptionOther,
			form.OtherFieldID(form.FieldDepartment), "Kitchen",
			form.FieldChiefComplaint, "Fever",
			form.FieldMedication1, "Paracetamol",
			form.QuantityFieldID(form.FieldMedication1), "2",
			form.FieldMedication2, "Antacid",
		),
		submit(t, model.PatientTypeGuest,
			form.FieldChiefComplaint, "Cough",
			form.FieldMedication2, "Cetirizine",
			form.QuantityFieldID(form.FieldMedication2), "1",
		),
	}

	rows := Aggregate(records, allTime)
	require.Len(t, rows, 3)

	assert.Equal(t, model.AggregationRow{
		Department: "Engineering", ChiefComplaint: "Animal Bite - Dog", ComplaintCount: 2,
		Medication1: "Vitamin C", Medication1Total: "10", Medication2: "-", Medication2Total: "-",
	}, rows[0])
	assert.Equal(t, model.AggregationRow{
		Department: "Kitchen", ChiefComplaint: "Fever", ComplaintCount: 1,
		Medication1: "Paracetamol", Medication1Total: "2", Medication2: "Antacid", Medication2Total: "1",
	}, rows[1])
	assert.Equal(t, model.AggregationRow{
		Department: "Other", ChiefComplaint: "Cough", ComplaintCount: 1,
		Medication1: "Cetirizine", Medication1Total: "1", Medication2: "-", Medication2Total: "-",
	}, rows[2])
}
