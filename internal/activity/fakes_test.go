package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ampvending/amp-backend/internal/model"
)

type memQueue struct {
	mu      sync.Mutex
	items   []string
	pushErr error
}

func (q *memQueue) Push(_ context.Context, payload string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pushErr != nil {
		return q.pushErr
	}
	q.items = append(q.items, payload)
	return nil
}

func (q *memQueue) Pop(ctx context.Context, _ time.Duration) (string, error) {
	return q.TryPop(ctx)
}

func (q *memQueue) TryPop(_ context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", ErrQueueEmpty
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, nil
}

type memStore struct {
	mu      sync.Mutex
	entries []*model.ActivityLog
	err     error
}

func (s *memStore) Create(_ context.Context, l *model.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, l)
	return nil
}

var errDown = errors.New("down")
