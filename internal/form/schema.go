package form

import (
	"errors"
	"fmt"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// FieldKind tags the variant of a FieldSpec.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindRadio
	KindSelect
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindRadio:
		return "radio"
	case KindSelect:
		return "select"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// MarshalText renders the kind as the input type name used by clients.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// hasOptions reports whether the kind is a choice among fixed options.
func (k FieldKind) hasOptions() bool {
	switch k {
	case KindRadio, KindSelect:
		return true
	case KindText, KindNumber, KindDate:
		return false
	}
	return false
}

// Field ids referenced by the normalizer and the reporting side.
const (
	FieldPatientNumber  = "patientNumber"
	FieldLastName       = "lastName"
	FieldFirstName      = "firstName"
	FieldMiddleName     = "middleName"
	FieldPatientAge     = "patientAge"
	FieldSex            = "sex"
	FieldPatientAddress = "patientAddress"
	FieldCivilStatus    = "civilStatus"
	FieldDepartment     = "department"
	FieldWalkInDate     = "walkInDate"
	FieldChiefComplaint = "chiefComplaint"
	FieldMedication1    = "medication1"
	FieldMedication2    = "medication2"
	FieldHistory        = "history"
)

const (
	// OptionOther reveals a free-text specify field on any select.
	OptionOther = "Other"
	// OptionAnimalBite reveals the animal type field.
	OptionAnimalBite = "Animal Bite (Dog, Cat, Other)"
)

// FieldSpec describes one form input.
type FieldSpec struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
	ReadOnly bool      `json:"readonly,omitempty"`
}

// IsMedication reports whether the field is one of the two medication slots.
func (f FieldSpec) IsMedication() bool {
	return IsMedicationField(f.ID)
}

func IsMedicationField(id string) bool {
	return id == FieldMedication1 || id == FieldMedication2
}

// DepartmentOptions are the selectable departments of the registration form.
var DepartmentOptions = []string{
	"HR", "Finance and Corporate Services", "Life Sciences & Education", "Park Grounds", "Engineering",
	"Security", "Parks and Adventure", "Safari Camp", "Base Camp", "Front Office", "Motorpool",
	"Sales & Marketing", "Office of the VP", "ML-Agri Ventures", "Santican Cattle Station",
	"Tunnel Garden", "Tenants-Outpost", "Tenants-Auntie Anne's", "Tenants-Pizzeria Michelangelo",
	"Tenants-Convenient Store", OptionOther,
}

// MedicationOptions are shared by both medication slots.
var MedicationOptions = []string{
	"Paracetamol", "Loperamide", "Mefenamic Acid", "Antacid",
	"Cetirizine", "Hyoscine", "Meclizine", OptionOther,
}

var ChiefComplaintOptions = []string{
	"Loose Bowel Movement", "Fever", "Cough", "Headache", "Hypogastric Pain",
	"Punctured Wound", "Lacerated Wound", OptionAnimalBite, "Colds",
	"Body Pain", "Toothache", "Stomach Discomfort", "Epigastric Pain", OptionOther,
}

var SexOptions = []string{"M", "F"}

var employeeFields = []FieldSpec{
	{ID: FieldPatientNumber, Label: "Patient Number", Kind: KindText, ReadOnly: true},
	{ID: FieldLastName, Label: "Last Name", Kind: KindText, Required: true},
	{ID: FieldFirstName, Label: "First Name", Kind: KindText, Required: true},
	{ID: FieldMiddleName, Label: "Middle Name / Initial", Kind: KindText},
	{ID: FieldPatientAge, Label: "Age", Kind: KindNumber, Required: true},
	{ID: FieldSex, Label: "Sex", Kind: KindRadio, Options: SexOptions, Required: true},
	{ID: FieldPatientAddress, Label: "Address", Kind: KindText, Required: true},
	{ID: FieldCivilStatus, Label: "Civil Status", Kind: KindText},
	{ID: FieldDepartment, Label: "Department", Kind: KindSelect, Options: DepartmentOptions, Required: true},
	{ID: FieldWalkInDate, Label: "Walk-in Date", Kind: KindDate, Required: true},
	{ID: FieldChiefComplaint, Label: "Chief Complaint", Kind: KindSelect, Options: ChiefComplaintOptions, Required: true},
	{ID: FieldMedication1, Label: "Medication 1", Kind: KindSelect, Options: MedicationOptions},
	{ID: FieldMedication2, Label: "Medication 2", Kind: KindSelect, Options: MedicationOptions},
	{ID: FieldHistory, Label: "History of Past Illness", Kind: KindText},
}

var guestFields = withoutFields(employeeFields, FieldCivilStatus, FieldDepartment)

func withoutFields(fields []FieldSpec, ids ...string) []FieldSpec {
	out := make([]FieldSpec, 0, len(fields))
next:
	for _, f := range fields {
		for _, id := range ids {
			if f.ID == id {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}

// Schema is the ordered field list for one patient type.
type Schema []FieldSpec

// SchemaFor returns a copy of the schema for the given patient type.
func SchemaFor(t model.PatientType) (Schema, error) {
	var src []FieldSpec
	switch t {
	case model.PatientTypeEmployee:
		src = employeeFields
	case model.PatientTypeGuest:
		src = guestFields
	default:
		return nil, fmt.Errorf("no schema for patient type %q", t)
	}
	out := make(Schema, len(src))
	copy(out, src)
	return out, nil
}

// Field looks up a field by id.
func (s Schema) Field(id string) (FieldSpec, bool) {
	for _, f := range s {
		if f.ID == id {
			return f, true
		}
	}
	return FieldSpec{}, false
}

var ErrInvalidSchema = errors.New("invalid schema")

// ValidateSchema checks id uniqueness and that choice fields carry options.
func ValidateSchema(s Schema) error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.ID == "" {
			return fmt.Errorf("%w: field with empty id", ErrInvalidSchema)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate field id %q", ErrInvalidSchema, f.ID)
		}
		seen[f.ID] = struct{}{}
		if f.Kind.hasOptions() && len(f.Options) == 0 {
			return fmt.Errorf("%w: %s field %q has no options", ErrInvalidSchema, f.Kind, f.ID)
		}
	}
	return nil
}
