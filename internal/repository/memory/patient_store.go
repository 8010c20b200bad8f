package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
)

// patientStore keeps documents as JSON maps so that Query and Update see the
// same keys a document database would.
type patientStore struct {
	mu   sync.RWMutex
	byID map[string]model.JSONMap
}

func NewPatientStore() repository.PatientStore {
	return &patientStore{
		byID: make(map[string]model.JSONMap),
	}
}

func (s *patientStore) Create(ctx context.Context, record *model.PatientRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id required")
	}
	doc, err := model.ToJSONMap(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.ID]; exists {
		return repository.ErrConflict
	}
	s.byID[record.ID] = doc
	return nil
}

func (s *patientStore) GetAll(ctx context.Context) ([]*model.PatientRecord, error) {
	return s.collect(func(model.JSONMap) bool { return true })
}

func (s *patientStore) Query(ctx context.Context, field, value string) ([]*model.PatientRecord, error) {
	return s.collect(func(doc model.JSONMap) bool {
		v, ok := doc[field]
		return ok && textValue(v) == value
	})
}

func (s *patientStore) Update(ctx context.Context, id string, fields model.JSONMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	merged := make(model.JSONMap, len(doc)+len(fields))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	// normalise through JSON so stored values have the decoded types
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	var out model.JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	s.byID[id] = out
	return nil
}

func (s *patientStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// BatchDelete removes all ids or none.
func (s *patientStore) BatchDelete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
		}
	}
	for _, id := range ids {
		delete(s.byID, id)
	}
	return nil
}

func (s *patientStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *patientStore) collect(keep func(model.JSONMap) bool) ([]*model.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PatientRecord, 0, len(s.byID))
	for _, doc := range s.byID {
		if !keep(doc) {
			continue
		}
		var rec model.PatientRecord
		if err := doc.MergeInto(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}

	// stable order by timestamp, then id
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// textValue renders a decoded JSON value the way Postgres' ->> operator does.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}
