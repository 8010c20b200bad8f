package form

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// TimestampLayout is the sortable UTC form used for PatientRecord.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// IDGenerator returns a fresh document id.
type IDGenerator func() (string, error)

// NewRecordID returns a UUIDv7: a millisecond timestamp followed by random bits.
func NewRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate record id: %w", err)
	}
	return id.String(), nil
}

// Normalize reads the state back into a canonical record.
func Normalize(s State, now time.Time, newID IDGenerator) (*model.PatientRecord, error) {
	if newID == nil {
		newID = NewRecordID
	}
	schema := s.Schema()
	if schema == nil {
		return nil, fmt.Errorf("no schema for patient type %q", s.PatientType)
	}

	values := make(map[string]string, len(schema))
	for _, f := range schema {
		if f.ID == FieldPatientNumber {
			continue
		}
		switch f.Kind {
		case KindRadio:
			values[f.ID] = s.Value(f.ID)
		case KindSelect:
			values[f.ID] = resolveSelect(s, f)
		case KindText, KindNumber, KindDate:
			values[f.ID] = strings.TrimSpace(s.Value(f.ID))
		}
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	rec := &model.PatientRecord{
		ID:             id,
		PatientNumber:  s.PatientNumber,
		Type:           s.PatientType,
		LastName:       values[FieldLastName],
		FirstName:      values[FieldFirstName],
		MiddleName:     values[FieldMiddleName],
		PatientAge:     values[FieldPatientAge],
		Sex:            values[FieldSex],
		PatientAddress: values[FieldPatientAddress],
		WalkInDate:     values[FieldWalkInDate],
		ChiefComplaint: values[FieldChiefComplaint],
		Medication1:    values[FieldMedication1],
		Medication2:    values[FieldMedication2],
		History:        values[FieldHistory],
		Timestamp:      now.UTC().Format(TimestampLayout),
	}
	if _, ok := schema.Field(FieldCivilStatus); ok {
		v := values[FieldCivilStatus]
		rec.CivilStatus = &v
	}
	if _, ok := schema.Field(FieldDepartment); ok {
		v := values[FieldDepartment]
		rec.Department = &v
	}

	rec.Medication = CombineMedications(rec.Medication1, rec.Medication2)
	rec.PatientName = rec.LastName + ", " + rec.FirstName
	return rec, nil
}

// CombineMedications joins the non-blank medication slots in slot order.
func CombineMedications(meds ...string) string {
	out := make([]string, 0, len(meds))
	for _, m := range meds {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return strings.Join(out, ", ")
}

func resolveSelect(s State, f FieldSpec) string {
	value := s.Value(f.ID)

	switch {
	case value == OptionAnimalBite:
		if sf, ok := s.subFieldOf(AnimalTypeFieldID, f.ID); ok {
			value = "Animal Bite - " + strings.TrimSpace(sf.Value)
		}
	case f.IsMedication() && value == OptionOther:
		if sf, ok := s.subFieldOf(OtherFieldID(f.ID), f.ID); ok {
			if v := strings.TrimSpace(sf.Value); v != "" {
				value = v
			}
		}
	case value == OptionOther:
		if sf, ok := s.subFieldOf(OtherFieldID(f.ID), f.ID); ok {
			value = strings.TrimSpace(sf.Value)
		}
	}

	if f.IsMedication() && strings.TrimSpace(value) != "" {
		if sf, ok := s.subFieldOf(QuantityFieldID(f.ID), f.ID); ok {
			if qty := strings.TrimSpace(sf.Value); qty != "" {
				value = fmt.Sprintf("%s (%s pcs)", value, qty)
			}
		}
	}
	return value
}

func (s State) subFieldOf(id, parent string) (SubField, bool) {
	for _, sf := range s.SubFields {
		if sf.ID == id && sf.Parent == parent {
			return sf, true
		}
	}
	return SubField{}, false
}
