package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
)

// Runs against a real database when WALKIN_TEST_DATABASE_URL is set.
func newTestStore(t *testing.T) repository.PatientStore {
	t.Helper()
	url := os.Getenv("WALKIN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("WALKIN_TEST_DATABASE_URL not set")
	}
	db, err := NewDB(Options{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE patients`)
	require.NoError(t, err)
	return NewPatientStore(db)
}

func TestPatientStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dept := "HR"
	emp := &model.PatientRecord{ID: "a", PatientNumber: "EMP-1", Type: model.PatientTypeEmployee, Department: &dept, Timestamp: "2024-03-01T00:00:00.000Z"}
	guest := &model.PatientRecord{ID: "b", PatientNumber: "GUE-2", Type: model.PatientTypeGuest, Timestamp: "2024-03-02T00:00:00.000Z"}
	require.NoError(t, s.Create(ctx, guest))
	require.NoError(t, s.Create(ctx, emp))
	assert.ErrorIs(t, s.Create(ctx, emp), repository.ErrConflict)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Nil(t, all[1].Department)

	found, err := s.Query(ctx, "patientNumber", "GUE-2")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.Query(ctx, "x'; drop table patients; --", "1")
	assert.Error(t, err)

	require.NoError(t, s.Update(ctx, "a", model.JSONMap{"isDeleted": true}))
	found, err = s.Query(ctx, "isDeleted", "true")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "HR", found[0].DepartmentValue())

	assert.ErrorIs(t, s.BatchDelete(ctx, []string{"a", "missing"}), repository.ErrNotFound)
	all, err = s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.BatchDelete(ctx, []string{"a", "b"}))
	assert.ErrorIs(t, s.Delete(ctx, "a"), repository.ErrNotFound)
}
