package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"surebet/internal/decision"
	"surebet/internal/verification/models"
	"surebet/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const attemptColumns = `id, applicant_id, email, full_name, date_of_birth, address, country,
	status, reasons, signals, evaluated_at,
	resolution_outcome, resolution_reviewer, resolution_note, resolved_at`

// PostgresStore persists verification attempts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New constructs a PostgreSQL-backed attempt store.
func New(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, a *models.Attempt) error {
	reasons, err := json.Marshal(append([]string{}, a.Decision.Reasons...))
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	signals := make([]string, len(a.Decision.Signals))
	for i, sig := range a.Decision.Signals {
		signals[i] = string(sig)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO kyc_attempts (id, applicant_id, email, full_name, date_of_birth, address, country,
			status, reasons, signals, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.ApplicantID.String(), a.Email,
		a.Claim.FullName, a.Claim.DateOfBirth, a.Claim.Address, a.Claim.Country,
		string(a.Decision.Status), reasons, signals, a.EvaluatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Attempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM kyc_attempts WHERE id = $1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	return a, nil
}

// ListPendingReviews returns unresolved review attempts, oldest first.
func (s *PostgresStore) ListPendingReviews(ctx context.Context, limit int) ([]*models.Attempt, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+attemptColumns+`
		FROM kyc_attempts
		WHERE status = 'review' AND resolution_outcome IS NULL
		ORDER BY evaluated_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending reviews: %w", err)
	}
	defer rows.Close()

	var out []*models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending reviews: %w", err)
	}
	return out, nil
}

// Resolve records a reviewer verdict on an unresolved review attempt.
func (s *PostgresStore) Resolve(ctx context.Context, id uuid.UUID, res models.Resolution) (*models.Attempt, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE kyc_attempts
		SET resolution_outcome = $2, resolution_reviewer = $3, resolution_note = $4, resolved_at = $5
		WHERE id = $1 AND status = 'review' AND resolution_outcome IS NULL
		RETURNING `+attemptColumns,
		id, string(res.Outcome), res.Reviewer, res.Note, res.ResolvedAt,
	)
	a, err := scanAttempt(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolve attempt: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kyc_attempts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check attempt: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrConflict
}

func (s *PostgresStore) Stats(ctx context.Context) (models.Stats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status,
			count(*),
			count(*) FILTER (WHERE status = 'review' AND resolution_outcome IS NULL),
			count(*) FILTER (WHERE 'system_error' = ANY(signals))
		FROM kyc_attempts
		GROUP BY status`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := models.Stats{ByStatus: make(map[decision.Status]int)}
	for rows.Next() {
		var (
			status                 string
			total, pending, sysErr int
		)
		if err := rows.Scan(&status, &total, &pending, &sysErr); err != nil {
			return models.Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[decision.Status(status)] = total
		stats.Total += total
		stats.PendingReviews += pending
		stats.SystemErrors += sysErr
	}
	return stats, rows.Err()
}

func scanAttempt(row pgx.Row) (*models.Attempt, error) {
	var (
		a           models.Attempt
		applicantID string
		status      string
		reasons     []byte
		signals     []string
		outcome     *string
		reviewer    *string
		note        *string
		resolvedAt  *time.Time
	)
	err := row.Scan(
		&a.ID, &applicantID, &a.Email,
		&a.Claim.FullName, &a.Claim.DateOfBirth, &a.Claim.Address, &a.Claim.Country,
		&status, &reasons, &signals, &a.EvaluatedAt,
		&outcome, &reviewer, &note, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedApplicant, err := uuid.Parse(applicantID)
	if err != nil {
		return nil, fmt.Errorf("parse applicant id: %w", err)
	}
	a.ApplicantID = parsedApplicant
	a.Claim.DateOfBirth = a.Claim.DateOfBirth.UTC()
	a.EvaluatedAt = a.EvaluatedAt.UTC()

	a.Decision.Status, err = decision.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reasons, &a.Decision.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons: %w", err)
	}
	if len(a.Decision.Reasons) == 0 {
		a.Decision.Reasons = nil
	}
	for _, sig := range signals {
		a.Decision.Signals = append(a.Decision.Signals, decision.Signal(sig))
	}

	if outcome != nil {
		a.Resolution = &models.Resolution{
			Outcome:    models.ResolutionOutcome(*outcome),
			Reviewer:   deref(reviewer),
			Note:       deref(note),
			ResolvedAt: resolvedAt.UTC(),
		}
	}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
