package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service signs and delivers escalation events to the configured target.
// Deliveries go through an in-memory queue drained by Worker; the queue is
// process-lifetime only.
type Service struct {
	target      Target
	client      *http.Client
	maxAttempts int
	now         func() time.Time

	mu    sync.Mutex
	queue []*Job
}

func NewService(target Target) *Service {
	return &Service{
		target: target,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
}

// Enqueue schedules one event for immediate delivery and returns without
// performing any I/O.
func (s *Service) Enqueue(eventType string, data any) (uuid.UUID, error) {
	now := s.now()
	event := EventPayload{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: now.UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal event: %w", err)
	}

	job := &Job{
		ID:          event.ID,
		EventType:   eventType,
		Payload:     payload,
		MaxAttempts: s.maxAttempts,
		NextRetryAt: now,
		CreatedAt:   now,
	}

	s.mu.Lock()
	s.queue = append(s.queue, job)
	s.mu.Unlock()

	return job.ID, nil
}

// Send performs one signed POST of the job's payload.
func (s *Service) Send(ctx context.Context, job *Job) error {
	sentAt := s.now()
	signature := Sign(s.target.Secret, sentAt, job.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target.URL, bytes.NewReader(job.Payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)
	req.Header.Set(TimestampHeader, strconv.FormatInt(sentAt.Unix(), 10))
	req.Header.Set(EventHeader, job.EventType)
	req.Header.Set("User-Agent", "Soukhyam-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil
}

// Pending returns the number of queued jobs.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// due removes and returns up to limit jobs whose retry time has passed,
// oldest first.
func (s *Service) due(now time.Time, limit int) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Job
	kept := s.queue[:0]
	for _, job := range s.queue {
		if len(out) < limit && !job.NextRetryAt.After(now) {
			out = append(out, job)
			continue
		}
		kept = append(kept, job)
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept

	return out
}

func (s *Service) requeue(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, job)
}
