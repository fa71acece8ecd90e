// Package feedback persists thumbs-up/down counters in the key-value store.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AdhiDevX369-work/doc-rag/internal/db"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
)

const (
	keyPositive = domain.KeyPrefix + "feedback:positive"
	keyNegative = domain.KeyPrefix + "feedback:negative"
)

// store is the consumer interface for feedback counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Stats aggregates recorded feedback.
type Stats struct {
	Positive     int64
	Negative     int64
	Total        int64
	Satisfaction float64
}

// Repo records and reads feedback counters.
type Repo struct {
	store store
}

// New creates a feedback repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Record increments the matching counter.
func (r *Repo) Record(ctx context.Context, positive bool) error {
	key := keyNegative
	if positive {
		key = keyPositive
	}
	if _, err := r.store.IncrBy(ctx, key, 1); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

// Stats reads the counters.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	pos, err := r.readCounter(ctx, keyPositive)
	if err != nil {
		return Stats{}, err
	}
	neg, err := r.readCounter(ctx, keyNegative)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Positive: pos, Negative: neg, Total: pos + neg}
	if s.Total > 0 {
		s.Satisfaction = float64(pos) / float64(s.Total)
	}
	return s, nil
}

func (r *Repo) readCounter(ctx context.Context, key string) (int64, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", key, err)
	}
	return n, nil
}
