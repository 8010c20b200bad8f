package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
	"github.com/jwalitptl/walkin-api/pkg/metrics"
)

// maxNumberAttempts bounds how often a colliding patient number is regenerated.
const maxNumberAttempts = 5

type PatientService interface {
	NewForm(sess model.Session, t model.PatientType) (form.State, error)
	ChangeForm(sess model.Session, s form.State, fieldID, value string) (form.State, error)
	Submit(ctx context.Context, sess model.Session, s form.State) (*model.PatientRecord, form.State, error)
	List(ctx context.Context, sess model.Session, filters *model.PatientFilters) ([]*model.PatientRecord, error)
	SoftDelete(ctx context.Context, sess model.Session, id string) error
	Restore(ctx context.Context, sess model.Session, id string) error
	DeleteAll(ctx context.Context, sess model.Session, t model.PatientType) (int, error)
}

// ValidationError lists the inputs that block a submission.
type ValidationError struct {
	Fields []form.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "invalid form: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) FieldErrors() []form.FieldError {
	return e.Fields
}

type Service struct {
	store   repository.PatientStore
	backup  repository.BackupCache
	numbers form.NumberGenerator
	newID   form.IDGenerator
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

type Option func(*Service)

func WithNumberGenerator(gen form.NumberGenerator) Option {
	return func(s *Service) { s.numbers = gen }
}

func WithIDGenerator(gen form.IDGenerator) Option {
	return func(s *Service) { s.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store repository.PatientStore, backup repository.BackupCache, opts ...Option) *Service {
	nop := zerolog.Nop()
	s := &Service{
		store:   store,
		backup:  backup,
		numbers: form.GeneratePatientNumber,
		newID:   form.NewRecordID,
		now:     time.Now,
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func guard(sess model.Session) error {
	if sess == nil || !sess.IsLoggedIn() {
		return model.ErrNotLoggedIn
	}
	return nil
}

func (s *Service) NewForm(sess model.Session, t model.PatientType) (form.State, error) {
	if err := guard(sess); err != nil {
		return form.State{}, err
	}
	st, err := form.NewState(t, s.numbers)
	if err != nil {
		return form.State{}, apperrors.BadRequest(err.Error(), err)
	}
	return st, nil
}

func (s *Service) ChangeForm(sess model.Session, st form.State, fieldID, value string) (form.State, error) {
	if err := guard(sess); err != nil {
		return st, err
	}
	next, err := form.Change(st, fieldID, value)
	if err != nil {
		return st, apperrors.BadRequest(err.Error(), err)
	}
	return next, nil
}

// Submit normalizes and stores the form. On success it returns the stored
// record and a fresh form; on any failure it returns the input state unchanged.
func (s *Service) Submit(ctx context.Context, sess model.Session, st form.State) (*model.PatientRecord, form.State, error) {
	if err := guard(sess); err != nil {
		return nil, st, err
	}
	if !st.PatientType.Valid() {
		return nil, st, apperrors.BadRequest(fmt.Sprintf("invalid patient type %q", st.PatientType), nil)
	}
	if errs := form.Validate(st); len(errs) > 0 {
		s.countSubmission(st.PatientType, "invalid")
		return nil, st, apperrors.BadRequest("form has invalid fields", &ValidationError{Fields: errs})
	}

	number, err := s.uniquePatientNumber(ctx, st)
	if err != nil {
		s.countSubmission(st.PatientType, "error")
		return nil, st, err
	}
	pending := st
	pending.PatientNumber = number

	record, err := form.Normalize(pending, s.now(), s.newID)
	if err != nil {
		s.countSubmission(st.PatientType, "error")
		return nil, st, apperrors.Internal(err)
	}

	start := time.Now()
	err = s.store.Create(ctx, record)
	s.metrics.ObserveStore("create", start, err)
	if err != nil {
		s.countSubmission(st.PatientType, "error")
		s.logger.Error().Err(err).
			Str("id", record.ID).
			Str("patient_number", record.PatientNumber).
			Str("user", sess.Username()).
			Msg("failed to save patient record")
		if errors.Is(err, repository.ErrConflict) {
			return nil, st, apperrors.Conflict("record already exists", err)
		}
		return nil, st, apperrors.Unavailable("store", fmt.Errorf("failed to create record: %w", err))
	}

	if s.backup != nil {
		err := s.backup.Append(ctx, record)
		s.metrics.ObserveBackup("append", err)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", record.ID).Msg("record saved but not mirrored to backup")
		}
	}

	s.countSubmission(st.PatientType, "success")
	s.logger.Info().
		Str("id", record.ID).
		Str("patient_number", record.PatientNumber).
		Str("type", string(record.Type)).
		Str("user", sess.Username()).
		Msg("patient registered")

	fresh, err := form.Rebuild(st, s.numbers)
	if err != nil {
		return record, st, apperrors.Internal(err)
	}
	return record, fresh, nil
}

// uniquePatientNumber keeps the displayed number unless a stored record
// already uses it, in which case a new one is drawn.
func (s *Service) uniquePatientNumber(ctx context.Context, st form.State) (string, error) {
	number := st.PatientNumber
	if number == "" {
		number = s.numbers(st.PatientType)
	}
	for attempt := 1; ; attempt++ {
		start := time.Now()
		existing, err := s.store.Query(ctx, form.FieldPatientNumber, number)
		s.metrics.ObserveStore("query", start, err)
		if err != nil {
			s.logger.Error().Err(err).Str("patient_number", number).Msg("failed to check patient number")
			return "", apperrors.Unavailable("store", fmt.Errorf("failed to check patient number: %w", err))
		}
		if len(existing) == 0 {
			return number, nil
		}
		if attempt == maxNumberAttempts {
			return "", apperrors.Conflict("could not allocate a free patient number", repository.ErrConflict)
		}
		if s.metrics != nil {
			s.metrics.PatientNumberRetries.Inc()
		}
		s.logger.Warn().Str("patient_number", number).Int("attempt", attempt).Msg("patient number taken, regenerating")
		number = s.numbers(st.PatientType)
	}
}

// List returns live records, or only soft-deleted ones when filters.OnlyDeleted
// is set, narrowed by type and search term.
func (s *Service) List(ctx context.Context, sess model.Session, filters *model.PatientFilters) ([]*model.PatientRecord, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &model.PatientFilters{}
	}

	var (
		records []*model.PatientRecord
		err     error
	)
	start := time.Now()
	if filters.Type != "" {
		records, err = s.store.Query(ctx, "type", string(filters.Type))
		s.metrics.ObserveStore("query", start, err)
	} else {
		records, err = s.store.GetAll(ctx)
		s.metrics.ObserveStore("get_all", start, err)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load patient records")
		return nil, apperrors.Unavailable("store", fmt.Errorf("failed to list records: %w", err))
	}

	term := strings.ToLower(strings.TrimSpace(filters.SearchTerm))
	out := make([]*model.PatientRecord, 0, len(records))
	for _, p := range records {
		if p.IsDeleted != filters.OnlyDeleted {
			continue
		}
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// matchesSearch looks for term in the patient's names and patient number.
func matchesSearch(p *model.PatientRecord, term string) bool {
	for _, v := range []string{p.PatientName, p.LastName, p.FirstName, p.PatientNumber} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func (s *Service) SoftDelete(ctx context.Context, sess model.Session, id string) error {
	return s.setDeleted(ctx, sess, id, true)
}

func (s *Service) Restore(ctx context.Context, sess model.Session, id string) error {
	return s.setDeleted(ctx, sess, id, false)
}

func (s *Service) setDeleted(ctx context.Context, sess model.Session, id string, deleted bool) error {
	if err := guard(sess); err != nil {
		return err
	}
	start := time.Now()
	err := s.store.Update(ctx, id, model.JSONMap{"isDeleted": deleted})
	s.metrics.ObserveStore("update", start, err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient record", err)
		}
		s.logger.Error().Err(err).Str("id", id).Bool("is_deleted", deleted).Msg("failed to update record")
		return apperrors.Unavailable("store", fmt.Errorf("failed to update record: %w", err))
	}
	s.logger.Info().Str("id", id).Bool("is_deleted", deleted).Str("user", sess.Username()).Msg("record delete flag changed")
	return nil
}

// DeleteAll permanently removes every displayed record of type t (all types
// when t is empty). Deletions are independent: on failure the count reports
// how many succeeded.
func (s *Service) DeleteAll(ctx context.Context, sess model.Session, t model.PatientType) (int, error) {
	records, err := s.List(ctx, sess, &model.PatientFilters{Type: t})
	if err != nil {
		return 0, err
	}

	deleted := 0
	var failed []error
	for _, p := range records {
		start := time.Now()
		err := s.store.Delete(ctx, p.ID)
		s.metrics.ObserveStore("delete", start, err)
		if err != nil {
			s.logger.Error().Err(err).Str("id", p.ID).Msg("failed to delete record")
			failed = append(failed, err)
			continue
		}
		deleted++
	}
	if len(failed) > 0 {
		return deleted, apperrors.Unavailable("store",
			fmt.Errorf("failed to delete %d of %d records: %w", len(failed), len(records), errors.Join(failed...)))
	}
	s.logger.Info().Int("deleted", deleted).Str("type", string(t)).Str("user", sess.Username()).Msg("records deleted")
	return deleted, nil
}

func (s *Service) countSubmission(t model.PatientType, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Submissions.WithLabelValues(string(t), status).Inc()
}
