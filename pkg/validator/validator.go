package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	Engine() *playground.Validate
}

type validator struct {
	v *playground.Validate
}

// CustomValidators are the project tags, shared with gin's binding engine.
func CustomValidators() map[string]playground.Func {
	return map[string]playground.Func{
		"patienttype": validatePatientType,
		"month":       validateMonth,
	}
}

func New() Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	for tag, fn := range CustomValidators() {
		// tags are static; registration only fails on an empty name
		_ = v.RegisterValidation(tag, fn)
	}
	v.RegisterTagNameFunc(JSONTagName)
	return &validator{v: v}
}

func (v *validator) Engine() *playground.Validate {
	return v.v
}

// Validate returns nil or an error listing every failed field.
func (v *validator) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}
	errs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, FieldMessage(e))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// FieldMessage renders one failed rule as "<namespace> <reason>".
func FieldMessage(e playground.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return e.Namespace() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Namespace(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Namespace(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Namespace(), e.Param())
	case "patienttype":
		return e.Namespace() + " must be guest or employee"
	case "month":
		return e.Namespace() + ` must be "all" or 1-12`
	}
	return fmt.Sprintf("%s failed on %s", e.Namespace(), e.Tag())
}

// JSONTagName reports fields by their json, then mapstructure, name.
func JSONTagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "mapstructure"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validatePatientType(fl playground.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := model.ParsePatientType(s)
	return err == nil
}

func validateMonth(fl playground.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" || strings.EqualFold(s, model.MonthAll) {
		return true
	}
	m, err := strconv.Atoi(s)
	return err == nil && m >= 1 && m <= 12
}
