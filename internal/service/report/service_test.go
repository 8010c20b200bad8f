package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository/memory"
)

var staff = &model.StaffSession{User: "nurse"}

func dept(s string) *string { return &s }

func TestStatsAndDeleteFiltered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPatientStore()
	for _, r := range []*model.PatientRecord{
		{ID: "1", Department: dept("Engineering"), WalkInDate: "2024-03-01", ChiefComplaint: "Fever", Medication1: "Paracetamol (1 pcs)", Timestamp: "1"},
		{ID: "2", Department: dept("Engineering"), WalkInDate: "2024-03-09", ChiefComplaint: "Fever", Medication1: "Paracetamol (1 pcs)", Timestamp: "2"},
		{ID: "3", Department: dept("HR"), WalkInDate: "2024-04-01", ChiefComplaint: "Cough", Timestamp: "3"},
		{ID: "4", Type: model.PatientTypeGuest, WalkInDate: "2024-03-05", ChiefComplaint: "Cough", Timestamp: "4"},
	} {
		require.NoError(t, store.Create(ctx, r))
	}
	svc := NewService(store, nil, nil)

	year := 2024
	march := model.ReportFilter{Department: "Engineering", Month: "3", Year: &year}
	rows, err := svc.Stats(ctx, staff, march)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ComplaintCount)
	assert.Equal(t, "2", rows[0].Medication1Total)

	n, err := svc.DeleteFiltered(ctx, staff, march)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "3", left[0].ID)

	n, err = svc.DeleteFiltered(ctx, staff, march)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStatsRequiresSession(t *testing.T) {
	svc := NewService(memory.NewPatientStore(), nil, nil)
	_, err := svc.Stats(context.Background(), model.AnonymousSession{}, model.ReportFilter{})
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)
	_, err = svc.DeleteFiltered(context.Background(), nil, model.ReportFilter{})
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)
}
