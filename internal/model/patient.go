package model

import (
	"fmt"
	"strings"
)

type PatientType string

const (
	PatientTypeGuest    PatientType = "guest"
	PatientTypeEmployee PatientType = "employee"
)

// ParsePatientType accepts the lower-case type names used in URLs and stored records.
func ParsePatientType(s string) (PatientType, error) {
	switch PatientType(strings.ToLower(strings.TrimSpace(s))) {
	case PatientTypeGuest:
		return PatientTypeGuest, nil
	case PatientTypeEmployee:
		return PatientTypeEmployee, nil
	}
	return "", fmt.Errorf("invalid patient type %q", s)
}

func (t PatientType) Valid() bool {
	return t == PatientTypeGuest || t == PatientTypeEmployee
}

// Title is the capitalised type name used in page titles ("Add Guest Patient").
func (t PatientType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// PatientRecord is the canonical document stored in the patients collection.
// CivilStatus and Department are pointers so that guest records carry no such keys.
type PatientRecord struct {
	ID             string      `json:"id" db:"id"`
	PatientNumber  string      `json:"patientNumber"`
	Type           PatientType `json:"type"`
	PatientName    string      `json:"patientName"`
	LastName       string      `json:"lastName"`
	FirstName      string      `json:"firstName"`
	MiddleName     string      `json:"middleName"`
	PatientAge     string      `json:"patientAge"`
	Sex            string      `json:"sex"`
	PatientAddress string      `json:"patientAddress"`
	CivilStatus    *string     `json:"civilStatus,omitempty"`
	Department     *string     `json:"department,omitempty"`
	WalkInDate     string      `json:"walkInDate"`
	ChiefComplaint string      `json:"chiefComplaint"`
	Medication1    string      `json:"medication1"`
	Medication2    string      `json:"medication2"`
	Medication     string      `json:"medication"`
	History        string      `json:"history"`
	Timestamp      string      `json:"timestamp"`
	IsDeleted      bool        `json:"isDeleted,omitempty"`

	// Older documents used these keys; they are read but never written.
	LegacyDate     string `json:"date,omitempty"`
	Medication1Qty any    `json:"medication1Qty,omitempty"`
	Medication2Qty any    `json:"medication2Qty,omitempty"`
}

// VisitDate returns the walk-in date, falling back to the legacy "date" key.
func (p *PatientRecord) VisitDate() string {
	if p.WalkInDate != "" {
		return p.WalkInDate
	}
	return p.LegacyDate
}

func (p *PatientRecord) DepartmentValue() string {
	if p.Department == nil {
		return ""
	}
	return *p.Department
}

func (p *PatientRecord) CivilStatusValue() string {
	if p.CivilStatus == nil {
		return ""
	}
	return *p.CivilStatus
}

// MedicationDisplay mirrors the records view: both slots when both are set,
// otherwise whichever single value is present.
func (p *PatientRecord) MedicationDisplay() string {
	if p.Medication1 != "" && p.Medication2 != "" {
		return p.Medication1 + ", " + p.Medication2
	}
	for _, v := range []string{p.Medication1, p.Medication2, p.Medication} {
		if v != "" {
			return v
		}
	}
	return ""
}

// PatientFilters selects records for the records view.
type PatientFilters struct {
	Type        PatientType `json:"type" form:"type"`
	SearchTerm  string      `json:"search_term" form:"q"`
	OnlyDeleted bool        `json:"only_deleted"`
}
