// Package testutil provides shared test doubles for warehouse-facing steps.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeWarehouse is a scripted warehouse.Querier double. It records every
// statement and answers queries by substring match against Results.
type FakeWarehouse struct {
	mu sync.Mutex

	// Statements holds every executed statement in order.
	Statements []string

	// Results maps a statement substring to the rows returned for any
	// statement containing it. First match in insertion order wins; use
	// QueueResult for count queries that must change between calls.
	Results map[string][][]any

	// queued holds per-substring FIFO result queues, consulted before
	// Results.
	queued map[string][][][]any

	// FailOn, when non-empty, makes any statement containing it fail.
	FailOn  string
	FailErr error

	// BatchAffected is returned from RunBatch per parameter row.
	BatchAffected int64
}

// NewFakeWarehouse creates an empty fake.
func NewFakeWarehouse() *FakeWarehouse {
	return &FakeWarehouse{
		Results: map[string][][]any{},
		queued:  map[string][][][]any{},
	}
}

// SetResult scripts rows for any statement containing the substring.
func (f *FakeWarehouse) SetResult(substr string, rows [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[substr] = rows
}

// QueueResult scripts a one-shot result for the next statement containing
// the substring; queued results are consumed in FIFO order.
func (f *FakeWarehouse) QueueResult(substr string, rows [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[substr] = append(f.queued[substr], rows)
}

// Run records the statement and returns the scripted rows, if any.
func (f *FakeWarehouse) Run(_ context.Context, query string, _ ...any) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Statements = append(f.Statements, query)

	if f.FailOn != "" && strings.Contains(query, f.FailOn) {
		if f.FailErr != nil {
			return nil, f.FailErr
		}
		return nil, fmt.Errorf("scripted failure on %q", f.FailOn)
	}

	for substr, queue := range f.queued {
		if strings.Contains(query, substr) && len(queue) > 0 {
			rows := queue[0]
			f.queued[substr] = queue[1:]
			return rows, nil
		}
	}
	for substr, rows := range f.Results {
		if strings.Contains(query, substr) {
			return rows, nil
		}
	}
	return nil, nil
}

// RunBatch records the statement once and returns len(paramRows) *
// BatchAffected.
func (f *FakeWarehouse) RunBatch(_ context.Context, query string, paramRows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Statements = append(f.Statements, query)
	if f.FailOn != "" && strings.Contains(query, f.FailOn) {
		return 0, fmt.Errorf("scripted failure on %q", f.FailOn)
	}
	return int64(len(paramRows)) * f.BatchAffected, nil
}

// StatementsContaining returns recorded statements containing the substring.
func (f *FakeWarehouse) StatementsContaining(substr string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, s := range f.Statements {
		if strings.Contains(s, substr) {
			out = append(out, s)
		}
	}
	return out
}
