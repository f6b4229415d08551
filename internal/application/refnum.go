package application

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// ReferenceAllocator hands out the monotonically increasing sequence numbers
// behind human-facing reference numbers.
type ReferenceAllocator interface {
	Next(ctx context.Context) (int64, error)
}

// FormatReferenceNumber renders the canonical "ZC-<year>-<seq>" form printed
// on issued documents.
func FormatReferenceNumber(year int, seq int64) string {
	return fmt.Sprintf("ZC-%d-%06d", year, seq)
}

// InMemoryAllocator is a process-local counter for tests and the in-memory
// deployment mode.
type InMemoryAllocator struct {
	mu   sync.Mutex
	next int64
}

func NewInMemoryAllocator() *InMemoryAllocator {
	return &InMemoryAllocator{next: 1}
}

func (a *InMemoryAllocator) Next(_ context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	seq := a.next
	a.next++
	return seq, nil
}

// PostgresAllocator draws from a database sequence so concurrent instances
// never collide.
type PostgresAllocator struct {
	db *sql.DB
}

func NewPostgresAllocator(db *sql.DB) *PostgresAllocator {
	return &PostgresAllocator{db: db}
}

func (a *PostgresAllocator) Next(ctx context.Context) (int64, error) {
	var seq int64
	if err := a.db.QueryRowContext(ctx, `SELECT nextval('application_reference_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next reference sequence: %w", err)
	}
	return seq, nil
}
