package billing

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionType is the channel a document was submitted through
type SubmissionType string

const (
	SubmissionTypeManual SubmissionType = "MANUAL"
	SubmissionTypeEmail  SubmissionType = "EMAIL"
	SubmissionTypeLetter SubmissionType = "LETTER"
)

// IsValid checks if the type is a valid SubmissionType
func (t SubmissionType) IsValid() bool {
	switch t {
	case SubmissionTypeManual, SubmissionTypeEmail, SubmissionTypeLetter:
		return true
	}
	return false
}

// String returns the string representation of SubmissionType
func (t SubmissionType) String() string {
	return string(t)
}

// Submission records one send (or scheduled send) of a document
type Submission struct {
	ID                 uuid.UUID      `json:"id"`
	Type               SubmissionType `json:"type"`
	SubmittedAt        time.Time      `json:"submitted_at"`
	IsScheduled        bool           `json:"is_scheduled"`
	IsCancelled        bool           `json:"is_cancelled"`
	ScheduledSendJobID *uuid.UUID     `json:"scheduled_send_job_id,omitempty"`
}

// NewSubmission creates an immediate submission for the given channel
func NewSubmission(channel SubmissionType, submittedAt time.Time) Submission {
	return Submission{
		ID:          uuid.New(),
		Type:        channel,
		SubmittedAt: submittedAt,
	}
}

// NewScheduledSubmission creates a submission bound to a deferred send job
func NewScheduledSubmission(channel SubmissionType, submittedAt time.Time, jobID uuid.UUID) Submission {
	sub := NewSubmission(channel, submittedAt)
	sub.IsScheduled = true
	sub.ScheduledSendJobID = &jobID
	return sub
}
