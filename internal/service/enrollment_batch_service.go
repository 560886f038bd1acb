package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/1300Sarthak/CS157a/internal/models"
	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
	"github.com/1300Sarthak/CS157a/pkg/validation"
)

type batchMetricsRecorder interface {
	ObserveBatchEnrollment(report *models.BatchReport, duration time.Duration)
}

type enrollmentCacheInvalidator interface {
	InvalidateEnrollment(ctx context.Context, studentEmail string)
}

// BatchEnrollmentService enrolls one student into several courses for a term
// as a single all-or-nothing transaction.
type BatchEnrollmentService struct {
	open         SessionOpener
	cache        enrollmentCacheInvalidator
	metrics      batchMetricsRecorder
	maxBatchSize int
	logger       *zap.Logger
	now          func() time.Time
}

// NewBatchEnrollmentService constructs the workflow. maxBatchSize <= 0 means unbounded.
func NewBatchEnrollmentService(open SessionOpener, cache enrollmentCacheInvalidator, metrics batchMetricsRecorder, maxBatchSize int, logger *zap.Logger) *BatchEnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchEnrollmentService{
		open:         open,
		cache:        cache,
		metrics:      metrics,
		maxBatchSize: maxBatchSize,
		logger:       logger,
		now:          time.Now,
	}
}

// txGuard remembers the session's auto-commit mode and puts it back on release.
type txGuard struct {
	session EnrollmentSession
	prior   bool
}

func acquireTxGuard(ctx context.Context, session EnrollmentSession) (*txGuard, error) {
	prior := session.AutoCommit()
	if err := session.SetAutoCommit(ctx, false); err != nil {
		return nil, err
	}
	return &txGuard{session: session, prior: prior}, nil
}

func (g *txGuard) release(ctx context.Context) error {
	return g.session.SetAutoCommit(ctx, g.prior)
}

// EnrollBatch enrolls the student identified by studentEmail into every course
// in courseCodes for term, or into none of them.
//
// Classified failures (unknown student, unknown course, duplicate, store
// rejection, invalid input) are reported on the returned BatchReport with a
// nil error. A non-nil error means the store itself failed; the report is
// still returned and says how far the call got and how the transaction ended.
func (s *BatchEnrollmentService) EnrollBatch(ctx context.Context, studentEmail, term string, courseCodes []string) (report *models.BatchReport, err error) {
	started := s.now()
	report = &models.BatchReport{
		ID:           uuid.NewString(),
		StudentEmail: strings.TrimSpace(studentEmail),
		Term:         strings.TrimSpace(term),
		Verdict:      models.VerdictHasFailures,
		Outcomes:     []models.CourseOutcome{},
		StartedAt:    started,
	}
	logger := s.logger.With(
		zap.String("batch_id", report.ID),
		zap.String("student_email", report.StudentEmail),
		zap.String("term", report.Term),
	)
	defer func() {
		report.FinishedAt = s.now()
		if s.metrics != nil {
			s.metrics.ObserveBatchEnrollment(report, report.FinishedAt.Sub(started))
		}
	}()

	session, err := s.open(ctx)
	if err != nil {
		logger.Error("failed to open enrollment session", zap.Error(err))
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open enrollment session")
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("failed to close enrollment session", zap.Error(closeErr))
		}
	}()

	guard, err := acquireTxGuard(ctx, session)
	if err != nil {
		logger.Error("failed to begin enrollment transaction", zap.Error(err))
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin enrollment transaction")
	}
	defer func() {
		if restoreErr := guard.release(context.WithoutCancel(ctx)); restoreErr != nil {
			report.RestoreError = restoreErr.Error()
			logger.Error("failed to restore auto-commit", zap.Error(restoreErr))
		}
	}()

	logger.Info("batch enrollment started", zap.Int("requested", len(courseCodes)))

	codes, reason := s.preflight(report.StudentEmail, report.Term, courseCodes)
	if reason != "" {
		report.Reason = reason
		logger.Info("batch enrollment rejected", zap.String("reason", reason))
		return report, s.rollback(session, report, logger, nil)
	}

	studentID, found, err := entityResolver{session: session}.student(ctx, report.StudentEmail)
	if err != nil {
		logger.Error("student lookup failed", zap.Error(err))
		return report, s.rollback(session, report, logger, batchFailure(err))
	}
	if !found {
		report.Verdict = models.VerdictStudentNotFound
		report.Reason = "student not found"
		logger.Info("batch enrollment aborted", zap.String("reason", report.Reason))
		return report, s.rollback(session, report, logger, nil)
	}
	report.StudentID = &studentID

	attempt := newEnrollmentAttempt(session)
	var outcomes outcomeAggregator
	for _, code := range codes {
		result := attempt.run(ctx, studentID, code, report.Term)
		if result.kind == attemptFatal {
			report.Outcomes = outcomes.list()
			logger.Error("batch enrollment failed", zap.String("course_code", code), zap.Error(result.err))
			return report, s.rollback(session, report, logger, batchFailure(result.err))
		}
		logger.Debug("course classified",
			zap.String("course_code", code),
			zap.String("classification", string(result.outcome.Classification)),
			zap.String("detail", result.outcome.Detail),
		)
		outcomes.record(result.outcome)
	}
	report.Outcomes = outcomes.list()
	report.Verdict = outcomes.verdict()

	if report.Verdict != models.VerdictAllSucceeded {
		return report, s.rollback(session, report, logger, nil)
	}

	if err := session.Commit(); err != nil {
		logger.Error("batch commit failed", zap.Error(err))
		return report, s.rollback(session, report, logger, batchFailure(err))
	}
	report.Action = models.ActionCommitted
	logger.Info("batch enrollment committed", zap.Int("enrolled", len(report.Outcomes)))

	if s.cache != nil {
		s.cache.InvalidateEnrollment(ctx, report.StudentEmail)
	}
	return report, nil
}

// preflight returns the normalized codes, or a reason when the input must be
// rejected before touching the store.
func (s *BatchEnrollmentService) preflight(email, term string, raw []string) ([]string, string) {
	if email == "" {
		return nil, "student email is required"
	}
	if !validation.IsTerm(term) {
		return nil, fmt.Sprintf("invalid term %q: expected <Season> <yyyy>", term)
	}
	codes := NormalizeCourseCodes(raw)
	if len(codes) == 0 {
		return nil, "no courses supplied"
	}
	if s.maxBatchSize > 0 && len(codes) > s.maxBatchSize {
		return nil, fmt.Sprintf("too many courses: %d supplied, at most %d allowed", len(codes), s.maxBatchSize)
	}
	return codes, ""
}

// rollback discards the batch transaction and records how it went. cause is
// returned unchanged when the rollback succeeds; a rollback failure is joined
// to it rather than replacing it.
func (s *BatchEnrollmentService) rollback(session EnrollmentSession, report *models.BatchReport, logger *zap.Logger, cause error) error {
	if err := session.Rollback(); err != nil {
		report.Action = models.ActionRollbackFailed
		report.RollbackError = err.Error()
		logger.Error("batch rollback failed", zap.Error(err))
		if cause == nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to roll back enrollment batch")
		}
		return errors.Join(cause, fmt.Errorf("rollback: %w", err))
	}
	report.Action = models.ActionRolledBack
	logger.Info("batch enrollment rolled back",
		zap.String("verdict", string(report.Verdict)),
		zap.Int("succeeded", report.CountBy(models.ClassificationSuccess)),
		zap.Int("not_found", report.CountBy(models.ClassificationNotFound)),
		zap.Int("duplicate", report.CountBy(models.ClassificationDuplicate)),
	)
	return cause
}

func batchFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "batch enrollment failed")
}

// NormalizeCourseCodes trims and upper-cases each code and drops empty
// entries, preserving order.
func NormalizeCourseCodes(raw []string) []string {
	codes := make([]string, 0, len(raw))
	for _, c := range raw {
		if code := validation.NormalizeCourseCode(c); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
