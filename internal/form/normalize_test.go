package form

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/model"
)

var submittedAt = time.Date(2024, time.March, 5, 8, 30, 0, 0, time.UTC)

func fixedID() (string, error) { return "rec-1", nil }

func fill(t *testing.T, s State, pairs ...string) State {
	t.Helper()
	require.Zero(t, len(pairs)%2)
	for i := 0; i < len(pairs); i += 2 {
		s = mustChange(t, s, pairs[i], pairs[i+1])
	}
	return s
}

func basicPatient(t *testing.T, pt model.PatientType) State {
	t.Helper()
	s, err := NewState(pt, fixedNumber(PatientNumberPrefix(pt)+"-123456"))
	require.NoError(t, err)
	return fill(t, s,
		FieldLastName, "  Cruz ",
		FieldFirstName, "Ana",
		FieldPatientAge, "34",
		FieldSex, "F",
		FieldPatientAddress, "Brgy. Uno",
		FieldWalkInDate, "2024-03-05",
		FieldChiefComplaint, "Fever",
	)
}

func TestNormalize_Employee(t *testing.T) {
	s := basicPatient(t, model.PatientTypeEmployee)
	s = fill(t, s, FieldDepartment, "HR", FieldCivilStatus, "Single")

	rec, err := Normalize(s, submittedAt, fixedID)
	require.NoError(t, err)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "EMP-123456", rec.PatientNumber)
	assert.Equal(t, model.PatientTypeEmployee, rec.Type)
	assert.Equal(t, "Cruz", rec.LastName)
	assert.Equal(t, "Cruz, Ana", rec.PatientName)
	assert.Equal(t, "HR", rec.DepartmentValue())
	assert.Equal(t, "Single", rec.CivilStatusValue())
	assert.Equal(t, "2024-03-05T08:30:00.000Z", rec.Timestamp)
	assert.Empty(t, rec.Medication)
}

func TestNormalize_GuestHasNoEmployeeKeys(t *testing.T) {
	rec, err := Normalize(basicPatient(t, model.PatientTypeGuest), submittedAt, fixedID)
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.NotContains(t, doc, "department")
	assert.NotContains(t, doc, "civilStatus")
	assert.Equal(t, "guest", doc["type"])
	assert.Equal(t, "GUE-123456", doc["patientNumber"])
}

func TestNormalize_EmployeeKeepsEmptyEmployeeKeys(t *testing.T) {
	s := basicPatient(t, model.PatientTypeEmployee)
	rec, err := Normalize(s, submittedAt, fixedID)
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "civilStatus")
	assert.Contains(t, doc, "department")
}

func TestNormalize_Selects(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		check func(t *testing.T, rec *model.PatientRecord)
	}{
		{
			name:  "animal bite with animal type",
			pairs: []string{FieldChiefComplaint, OptionAnimalBite, AnimalTypeFieldID, " Dog "},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Animal Bite - Dog", rec.ChiefComplaint)
			},
		},
		{
			name:  "other complaint takes specify text",
			pairs: []string{FieldChiefComplaint, OptionOther, OtherFieldID(FieldChiefComplaint), "Sprain"},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Sprain", rec.ChiefComplaint)
			},
		},
		{
			name:  "other department takes specify text",
			pairs: []string{FieldDepartment, OptionOther, OtherFieldID(FieldDepartment), "Kitchen"},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Kitchen", rec.DepartmentValue())
			},
		},
		{
			name: "other medication with quantity",
			pairs: []string{
				FieldMedication1, OptionOther,
				OtherFieldID(FieldMedication1), "Vitamin C",
				QuantityFieldID(FieldMedication1), "5",
			},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Vitamin C (5 pcs)", rec.Medication1)
				assert.Equal(t, "Vitamin C (5 pcs)", rec.Medication)
			},
		},
		{
			name:  "other medication with blank specify keeps Other",
			pairs: []string{FieldMedication1, OptionOther, QuantityFieldID(FieldMedication1), "2"},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Other (2 pcs)", rec.Medication1)
			},
		},
		{
			name: "medication without quantity",
			pairs: []string{
				FieldMedication1, "Paracetamol",
				FieldMedication2, "Antacid", QuantityFieldID(FieldMedication2), "1",
			},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Equal(t, "Paracetamol", rec.Medication1)
				assert.Equal(t, "Antacid (1 pcs)", rec.Medication2)
				assert.Equal(t, "Paracetamol, Antacid (1 pcs)", rec.Medication)
			},
		},
		{
			name:  "second slot only",
			pairs: []string{FieldMedication2, "Cetirizine", QuantityFieldID(FieldMedication2), "3"},
			check: func(t *testing.T, rec *model.PatientRecord) {
				assert.Empty(t, rec.Medication1)
				assert.Equal(t, "Cetirizine (3 pcs)", rec.Medication)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fill(t, basicPatient(t, model.PatientTypeEmployee), tt.pairs...)
			rec, err := Normalize(s, submittedAt, fixedID)
			require.NoError(t, err)
			tt.check(t, rec)
		})
	}
}

func TestNormalize_DetachedSubFieldIsIgnored(t *testing.T) {
	s := basicPatient(t, model.PatientTypeEmployee)
	s = fill(t, s,
		FieldChiefComplaint, OptionAnimalBite,
		AnimalTypeFieldID, "Cat",
		FieldChiefComplaint, "Cough",
	)
	rec, err := Normalize(s, submittedAt, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "Cough", rec.ChiefComplaint)
}

func TestNormalize_DefaultIDIsUUIDv7(t *testing.T) {
	rec, err := Normalize(basicPatient(t, model.PatientTypeGuest), submittedAt, nil)
	require.NoError(t, err)

	id, err := uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestCombineMedications(t *testing.T) {
	assert.Equal(t, "", CombineMedications("", " "))
	assert.Equal(t, "A", CombineMedications("A", ""))
	assert.Equal(t, "B", CombineMedications("", "B"))
	assert.Equal(t, "A, B", CombineMedications("A", "B"))
}
