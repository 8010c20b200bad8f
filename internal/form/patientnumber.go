package form

import (
	"fmt"
	"math/rand/v2"

	"github.com/jwalitptl/walkin-api/internal/model"
)

const patientNumberRange = 1_000_000

// NumberGenerator produces display identifiers for a patient type.
type NumberGenerator func(model.PatientType) string

// GeneratePatientNumber returns "EMP-n" for employees and "GUE-n" otherwise,
// with n uniform in [0, 1000000). Uniqueness is the caller's concern.
func GeneratePatientNumber(t model.PatientType) string {
	return fmt.Sprintf("%s-%d", PatientNumberPrefix(t), rand.IntN(patientNumberRange))
}

func PatientNumberPrefix(t model.PatientType) string {
	if t == model.PatientTypeEmployee {
		return "EMP"
	}
	return "GUE"
}
