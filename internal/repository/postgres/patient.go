package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
)

const uniqueViolation = "23505"

var fieldPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

type patientRow struct {
	ID   string         `db:"id"`
	Data types.JSONText `db:"data"`
}

type patientStore struct {
	BaseRepository
}

// NewPatientStore stores each record as one JSONB document keyed by its id.
func NewPatientStore(db *sqlx.DB) repository.PatientStore {
	return &patientStore{BaseRepository: NewBaseRepository(db)}
}

func (r *patientStore) Create(ctx context.Context, record *model.PatientRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `INSERT INTO patients (id, data) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, types.JSONText(data)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

func (r *patientStore) GetAll(ctx context.Context) ([]*model.PatientRecord, error) {
	query := `SELECT id, data FROM patients ORDER BY data->>'timestamp', id`
	var rows []patientRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return decodeRows(rows)
}

func (r *patientStore) Query(ctx context.Context, field, value string) ([]*model.PatientRecord, error) {
	if !fieldPattern.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}
	query := `SELECT id, data FROM patients WHERE data->>$1 = $2 ORDER BY data->>'timestamp', id`
	var rows []patientRow
	if err := r.db.SelectContext(ctx, &rows, query, field, value); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return decodeRows(rows)
}

func (r *patientStore) Update(ctx context.Context, id string, fields model.JSONMap) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	query := `UPDATE patients SET data = data || $2::jsonb WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, types.JSONText(data))
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return expectRow(res.RowsAffected())
}

func (r *patientStore) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return expectRow(res.RowsAffected())
}

// BatchDelete removes all ids in one transaction, or none of them.
func (r *patientStore) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = ANY($1)`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if int(n) != len(ids) {
			return fmt.Errorf("%w: deleted %d of %d records", repository.ErrNotFound, n, len(ids))
		}
		return nil
	})
}

func (r *patientStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func expectRow(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func decodeRows(rows []patientRow) ([]*model.PatientRecord, error) {
	out := make([]*model.PatientRecord, 0, len(rows))
	for _, row := range rows {
		var rec model.PatientRecord
		if err := row.Data.Unmarshal(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", row.ID, err)
		}
		if rec.ID == "" {
			rec.ID = row.ID
		}
		out = append(out, &rec)
	}
	return out, nil
}
