package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Choice is one option of a radio group or drop-down.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Widget is the client-facing projection of a field or sub-field.
type Widget struct {
	ID          string   `json:"id"`
	Parent      string   `json:"parent,omitempty"`
	Label       string   `json:"label,omitempty"`
	Input       string   `json:"input"`
	Required    bool     `json:"required"`
	ReadOnly    bool     `json:"readonly,omitempty"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
	Min         *int     `json:"min,omitempty"`
	Max         *int     `json:"max,omitempty"`
}

// Render projects the state into widgets in schema order, each select
// followed by its attached sub-fields.
func Render(s State) []Widget {
	schema := s.Schema()
	out := make([]Widget, 0, len(schema)+len(s.SubFields))
	for _, f := range schema {
		out = append(out, renderField(s, f))
		for _, sf := range s.SubFields {
			if sf.Parent == f.ID {
				out = append(out, renderSubField(sf))
			}
		}
	}
	return out
}

func fieldLabel(f FieldSpec) string {
	if f.Required {
		return f.Label + " *"
	}
	return f.Label
}

func renderField(s State, f FieldSpec) Widget {
	w := Widget{
		ID:       f.ID,
		Label:    fieldLabel(f),
		Input:    f.Kind.String(),
		Required: f.Required,
		ReadOnly: f.ReadOnly,
		Value:    s.Value(f.ID),
	}
	if f.ID == FieldPatientNumber {
		w.Input = KindText.String()
		w.ReadOnly = true
		w.Value = s.PatientNumber
		return w
	}

	switch f.Kind {
	case KindRadio:
		for _, opt := range f.Options {
			w.Choices = append(w.Choices, Choice{
				Value:    opt,
				Label:    radioLabel(opt),
				Selected: opt == w.Value,
			})
		}
	case KindSelect:
		w.Choices = append(w.Choices, Choice{
			Value:    "",
			Label:    "Select " + f.Label,
			Selected: w.Value == "",
			Disabled: true,
		})
		for _, opt := range f.Options {
			w.Choices = append(w.Choices, Choice{Value: opt, Label: opt, Selected: opt == w.Value})
		}
	case KindText, KindNumber, KindDate:
	}
	return w
}

func radioLabel(opt string) string {
	switch opt {
	case "M":
		return "Male"
	case "F":
		return "Female"
	}
	return opt
}

func renderSubField(sf SubField) Widget {
	w := Widget{
		ID:       sf.ID,
		Parent:   sf.Parent,
		Input:    KindText.String(),
		Required: sf.Required,
		Value:    sf.Value,
	}
	switch sf.Kind {
	case SubAnimalType:
		w.Placeholder = "Specify animal type"
	case SubOther:
		w.Placeholder = "Specify " + sf.Parent
	case SubQuantity:
		lo, hi := QuantityMin, QuantityMax
		w.Input = KindNumber.String()
		w.Placeholder = fmt.Sprintf("No. of pcs (%d–%d)", lo, hi)
		w.Min, w.Max = &lo, &hi
	}
	return w
}

// FieldError describes one input the operator must fix before submitting.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate applies the browser-side input rules (required flags, numeric
// and date inputs, quantity bounds) to a state.
func Validate(s State) []FieldError {
	var errs []FieldError
	for _, f := range s.Schema() {
		if f.ReadOnly {
			continue
		}
		v := strings.TrimSpace(s.Value(f.ID))
		if v == "" {
			if f.Required {
				errs = append(errs, FieldError{Field: f.ID, Message: "is required"})
			}
			continue
		}
		switch f.Kind {
		case KindNumber:
			if n, err := strconv.ParseFloat(v, 64); err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				errs = append(errs, FieldError{Field: f.ID, Message: "must be a number"})
			}
		case KindDate:
			if _, err := time.Parse(time.DateOnly, v); err != nil {
				errs = append(errs, FieldError{Field: f.ID, Message: "must be a date (YYYY-MM-DD)"})
			}
		case KindText, KindRadio, KindSelect:
		}
	}
	for _, sf := range s.SubFields {
		v := strings.TrimSpace(sf.Value)
		if v == "" {
			if sf.Required {
				errs = append(errs, FieldError{Field: sf.ID, Message: "is required"})
			}
			continue
		}
		if sf.Kind == SubQuantity {
			n, err := strconv.Atoi(v)
			if err != nil || n < QuantityMin || n > QuantityMax {
				errs = append(errs, FieldError{
					Field:   sf.ID,
					Message: fmt.Sprintf("must be a whole number between %d and %d", QuantityMin, QuantityMax),
				})
			}
		}
	}
	return errs
}
