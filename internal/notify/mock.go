package notify

import (
	"context"
	"sync"
)

// RecordingSender keeps every message in memory. Tests use it in place of SMTP.
type RecordingSender struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (s *RecordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Messages = append(s.Messages, msg)
	return nil
}

func (s *RecordingSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Messages...)
}
