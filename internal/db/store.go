package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/licitapp/licitapp/internal/models"
)

var ErrSubscriberExists = errors.New("subscriber already exists")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateSubscriber inserts a new subscription and returns it with its
// generated id. A duplicate email maps to ErrSubscriberExists.
func (s *Store) CreateSubscriber(ctx context.Context, sub models.Subscriber) (models.Subscriber, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscribers (email, keywords, provincias, tipos, importe_min)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		sub.Email, sub.Keywords, sub.Provincias, sub.Tipos, sub.ImporteMin,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sub, ErrSubscriberExists
		}
		return sub, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return sub, nil
}

// ListSubscribers returns every subscription, oldest first, the order
// the alerts job processes them in.
func (s *Store) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, keywords, provincias, tipos, importe_min, created_at
		FROM subscribers
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Keywords, &sub.Provincias, &sub.Tipos, &sub.ImporteMin, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteSubscriber removes a subscription by email.
func (s *Store) DeleteSubscriber(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM subscribers WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SyncRun is one recorded sync execution, for operational inspection.
type SyncRun struct {
	RunID         string  `json:"run_id"`
	Source        string  `json:"source"`
	Status        string  `json:"status"`
	ZipsFetched   int     `json:"zips_fetched"`
	RawEntries    int     `json:"raw_entries"`
	UniqueTenders int     `json:"unique_tenders"`
	ActiveTenders int     `json:"active_tenders"`
	Errors        int     `json:"errors"`
	StartedAt     string  `json:"started_at"`
	CompletedAt   *string `json:"completed_at"`
}

// RecentSyncRuns returns the latest runs, newest first.
func (s *Store) RecentSyncRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, source, status, zips_fetched, raw_entries, unique_tenders,
			active_tenders, errors, started_at::text, completed_at::text
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		if err := rows.Scan(&r.RunID, &r.Source, &r.Status, &r.ZipsFetched, &r.RawEntries,
			&r.UniqueTenders, &r.ActiveTenders, &r.Errors, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
