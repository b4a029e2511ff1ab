package email

import (
	"context"
	"sync"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
)

// RecordingSender collects messages instead of delivering them. Used in tests
// and in local development when no SMTP host is configured.
type RecordingSender struct {
	mu       sync.Mutex
	messages []billingapp.EmailMessage
}

// NewRecordingSender creates an empty recording sender
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

// Send records the message
func (s *RecordingSender) Send(_ context.Context, msg billingapp.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far
func (s *RecordingSender) Messages() []billingapp.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]billingapp.EmailMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

var _ billingapp.EmailSender = (*RecordingSender)(nil)
