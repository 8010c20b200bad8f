package form

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwalitptl/walkin-api/internal/model"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field is read-only")
	ErrInvalidOption = errors.New("value is not one of the field options")
)

// SubFieldKind tags a conditionally revealed input.
type SubFieldKind int

const (
	SubAnimalType SubFieldKind = iota
	SubOther
	SubQuantity
)

func (k SubFieldKind) String() string {
	switch k {
	case SubAnimalType:
		return "animal_type"
	case SubOther:
		return "other"
	case SubQuantity:
		return "quantity"
	}
	return fmt.Sprintf("SubFieldKind(%d)", int(k))
}

func (k SubFieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SubFieldKind) UnmarshalText(b []byte) error {
	for _, v := range []SubFieldKind{SubAnimalType, SubOther, SubQuantity} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown sub-field kind %q", b)
}

const (
	AnimalTypeFieldID = "animalTypeInput"
	QuantityMin       = 0
	QuantityMax       = 100
)

func OtherFieldID(parent string) string    { return "other-" + parent }
func QuantityFieldID(parent string) string { return "pcs-" + parent }

// SubField is a specify or quantity input attached to a select field.
type SubField struct {
	ID       string       `json:"id"`
	Parent   string       `json:"parent"`
	Kind     SubFieldKind `json:"kind"`
	Required bool         `json:"required"`
	Value    string       `json:"value"`
}

// State is the complete, UI-independent state of one registration form.
type State struct {
	PatientType   model.PatientType `json:"patient_type"`
	PatientNumber string            `json:"patient_number"`
	Values        map[string]string `json:"values"`
	SubFields     []SubField        `json:"sub_fields"`

	schema Schema
}

// NewState builds an empty form for t. The patient number is generated here
// and is the one persisted if this form is submitted.
func NewState(t model.PatientType, gen NumberGenerator) (State, error) {
	schema, err := SchemaFor(t)
	if err != nil {
		return State{}, err
	}
	if gen == nil {
		gen = GeneratePatientNumber
	}
	return State{
		PatientType:   t,
		PatientNumber: gen(t),
		Values:        make(map[string]string),
		SubFields:     []SubField{},
		schema:        schema,
	}, nil
}

// Rebuild discards everything the operator entered and starts a fresh form
// with a new patient number.
func Rebuild(s State, gen NumberGenerator) (State, error) {
	return NewState(s.PatientType, gen)
}

// Restore replays submitted values through the reducer so that the attached
// sub-fields are exactly those the select values imply.
func Restore(t model.PatientType, patientNumber string, values, subValues map[string]string) (State, error) {
	s, err := NewState(t, func(model.PatientType) string { return patientNumber })
	if err != nil {
		return State{}, err
	}
	for id := range values {
		if _, ok := s.schema.Field(id); !ok {
			return State{}, fmt.Errorf("%w: %s", ErrUnknownField, id)
		}
	}
	for _, f := range s.schema {
		v, ok := values[f.ID]
		if !ok || f.ReadOnly {
			continue
		}
		if s, err = Change(s, f.ID, v); err != nil {
			return State{}, err
		}
	}
	for id, v := range subValues {
		if s, err = Change(s, id, v); err != nil {
			return State{}, err
		}
	}
	return s, nil
}

func (s State) Schema() Schema {
	if s.schema == nil {
		s.schema, _ = SchemaFor(s.PatientType)
	}
	return s.schema
}

// Value returns the current value of a schema field ("" when unset).
func (s State) Value(id string) string {
	return s.Values[id]
}

// SubField returns the attached sub-field with the given id.
func (s State) SubField(id string) (SubField, bool) {
	for _, sf := range s.SubFields {
		if sf.ID == id {
			return sf, true
		}
	}
	return SubField{}, false
}

func (s State) clone() State {
	out := s
	out.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	out.SubFields = slices.Clone(s.SubFields)
	if out.SubFields == nil {
		out.SubFields = []SubField{}
	}
	out.schema = s.Schema()
	return out
}

// Change is the form reducer: it returns the state that results from setting
// fieldID (a schema field or an attached sub-field) to value.
func Change(s State, fieldID, value string) (State, error) {
	next := s.clone()

	for i, sf := range next.SubFields {
		if sf.ID == fieldID {
			next.SubFields[i].Value = value
			return next, nil
		}
	}

	f, ok := next.schema.Field(fieldID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	if f.ReadOnly {
		return s, fmt.Errorf("%w: %s", ErrReadOnlyField, fieldID)
	}

	switch f.Kind {
	case KindRadio, KindSelect:
		if value != "" && !slices.Contains(f.Options, value) {
			return s, fmt.Errorf("%w: %s=%q", ErrInvalidOption, fieldID, value)
		}
		next.Values[fieldID] = value
		if f.Kind == KindSelect {
			next.reconcile(f, value)
		}
	case KindText, KindNumber, KindDate:
		next.Values[fieldID] = value
	}
	return next, nil
}

// reconcile attaches or detaches the sub-fields implied by a select value.
func (s *State) reconcile(f FieldSpec, value string) {
	if value == OptionAnimalBite {
		s.attach(SubField{ID: AnimalTypeFieldID, Parent: f.ID, Kind: SubAnimalType, Required: true})
	} else {
		s.detach(AnimalTypeFieldID, f.ID)
	}

	if value == OptionOther {
		s.attach(SubField{ID: OtherFieldID(f.ID), Parent: f.ID, Kind: SubOther, Required: true})
	} else {
		s.detach(OtherFieldID(f.ID), f.ID)
	}

	if f.IsMedication() {
		if value != "" {
			s.attach(SubField{ID: QuantityFieldID(f.ID), Parent: f.ID, Kind: SubQuantity, Required: true})
		} else {
			s.detach(QuantityFieldID(f.ID), f.ID)
		}
	}
}

// attach adds sf unless an input with the same id already exists under the same parent.
func (s *State) attach(sf SubField) {
	for _, existing := range s.SubFields {
		if existing.ID == sf.ID && existing.Parent == sf.Parent {
			return
		}
	}
	s.SubFields = append(s.SubFields, sf)
}

func (s *State) detach(id, parent string) {
	s.SubFields = slices.DeleteFunc(s.SubFields, func(sf SubField) bool {
		return sf.ID == id && sf.Parent == parent
	})
}
