package models

import "time"

// Classification tags the result of one course in a batch.
type Classification string

const (
	ClassificationSuccess   Classification = "SUCCESS"
	ClassificationNotFound  Classification = "NOT_FOUND"
	ClassificationDuplicate Classification = "DUPLICATE"
)

// BatchVerdict is the batch-level decision.
type BatchVerdict string

const (
	VerdictAllSucceeded    BatchVerdict = "ALL_SUCCEEDED"
	VerdictHasFailures     BatchVerdict = "HAS_FAILURES"
	VerdictStudentNotFound BatchVerdict = "ABORTED_STUDENT_NOT_FOUND"
)

// TransactionAction records how the batch transaction was closed.
type TransactionAction string

const (
	ActionCommitted      TransactionAction = "COMMITTED"
	ActionRolledBack     TransactionAction = "ROLLED_BACK"
	ActionRollbackFailed TransactionAction = "ROLLBACK_FAILED"
)

// CourseOutcome is the result for one requested course code.
type CourseOutcome struct {
	CourseCode     string         `json:"course_code"`
	Classification Classification `json:"classification"`
	Detail         string         `json:"detail"`
}

// BatchReport describes one batch enrollment call. Outcomes follow input order.
type BatchReport struct {
	ID            string            `json:"id"`
	StudentEmail  string            `json:"student_email"`
	StudentID     *int64            `json:"student_id,omitempty"`
	Term          string            `json:"term"`
	Verdict       BatchVerdict      `json:"verdict"`
	Reason        string            `json:"reason,omitempty"`
	Outcomes      []CourseOutcome   `json:"outcomes"`
	Action        TransactionAction `json:"action,omitempty"`
	RollbackError string            `json:"rollback_error,omitempty"`
	RestoreError  string            `json:"restore_error,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// Committed reports whether the batch enrollments were made durable.
func (r *BatchReport) Committed() bool {
	return r != nil && r.Action == ActionCommitted
}

// CountBy returns how many outcomes carry the classification.
func (r *BatchReport) CountBy(c Classification) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o.Classification == c {
			n++
		}
	}
	return n
}
