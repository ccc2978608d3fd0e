package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Reply is one canned outcome for a Scripted provider.
type Reply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Scripted plays back replies in order and keeps every request it saw.
// Reply content is checked against the request schema like a real backend.
type Scripted struct {
	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// NewScripted returns a provider that answers with replies in order.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) ModelID() string { return "scripted" }

func (s *Scripted) Generate(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, &UnavailableError{Err: errors.New("no scripted reply left")}
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return finish(req, string(r.Content), false, s.ModelID(), r.Usage)
}

// Requests returns the requests received so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
