package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/report"
	"github.com/jwalitptl/walkin-api/internal/repository"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
	"github.com/jwalitptl/walkin-api/pkg/metrics"
)

type ReportService interface {
	Stats(ctx context.Context, sess model.Session, filter model.ReportFilter) ([]model.AggregationRow, error)
	DeleteFiltered(ctx context.Context, sess model.Session, filter model.ReportFilter) (int, error)
}

type Service struct {
	store   repository.PatientStore
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewService(store repository.PatientStore, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{store: store, metrics: m, logger: logger}
}

// Stats re-reads the whole collection and aggregates it.
func (s *Service) Stats(ctx context.Context, sess model.Session, filter model.ReportFilter) ([]model.AggregationRow, error) {
	records, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return report.Aggregate(records, filter), nil
}

// DeleteFiltered permanently removes every record counted by Stats for the
// same filter, as one batch.
func (s *Service) DeleteFiltered(ctx context.Context, sess model.Session, filter model.ReportFilter) (int, error) {
	records, err := s.load(ctx, sess)
	if err != nil {
		return 0, err
	}
	selected := report.Select(records, filter)
	if len(selected) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(selected))
	for _, p := range selected {
		ids = append(ids, p.ID)
	}
	start := time.Now()
	err = s.store.BatchDelete(ctx, ids)
	s.metrics.ObserveStore("batch_delete", start, err)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete filtered records")
		return 0, apperrors.Unavailable("store", fmt.Errorf("failed to delete records: %w", err))
	}
	s.logger.Info().
		Int("count", len(ids)).
		Str("department", filter.Department).
		Str("month", filter.Month).
		Str("user", sess.Username()).
		Msg("filtered records deleted")
	return len(ids), nil
}

func (s *Service) load(ctx context.Context, sess model.Session) ([]*model.PatientRecord, error) {
	if sess == nil || !sess.IsLoggedIn() {
		return nil, model.ErrNotLoggedIn
	}
	start := time.Now()
	records, err := s.store.GetAll(ctx)
	s.metrics.ObserveStore("get_all", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load patients")
		return nil, apperrors.Unavailable("store", fmt.Errorf("failed to list records: %w", err))
	}
	return records, nil
}
