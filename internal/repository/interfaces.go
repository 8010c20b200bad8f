package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/walkin-api/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// PatientsCollection is the single collection the service reads and writes.
const PatientsCollection = "patients"

// All repository interfaces in one file
type (
	// PatientStore is the document store holding patient records.
	PatientStore interface {
		Create(ctx context.Context, record *model.PatientRecord) error
		GetAll(ctx context.Context) ([]*model.PatientRecord, error)
		// Query returns the records whose top-level JSON key field equals value.
		Query(ctx context.Context, field, value string) ([]*model.PatientRecord, error)
		// Update merges fields into the stored document.
		Update(ctx context.Context, id string, fields model.JSONMap) error
		Delete(ctx context.Context, id string) error
		BatchDelete(ctx context.Context, ids []string) error
		Ping(ctx context.Context) error
	}

	// BackupCache is an append-only mirror of submitted records.
	BackupCache interface {
		Append(ctx context.Context, record *model.PatientRecord) error
		// Dump returns the mirrored documents oldest first, for offline recovery.
		Dump(ctx context.Context) ([][]byte, error)
	}
)
