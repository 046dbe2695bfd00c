package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donut-trade-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DepositRepo implements ports.DepositRepository.
type DepositRepo struct {
	pool Pool
}

// NewDepositRepo creates a new DepositRepo.
func NewDepositRepo(pool Pool) *DepositRepo {
	return &DepositRepo{pool: pool}
}

const depositColumns = `id, user_id, amount, status, admin_id, admin_note, created_at, processed_at`

func scanDeposit(row pgx.Row) (*domain.DepositRequest, error) {
	d := &domain.DepositRequest{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.Amount, &d.Status,
		&d.AdminID, &d.AdminNote, &d.CreatedAt, &d.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func scanDeposits(rows pgx.Rows) ([]domain.DepositRequest, error) {
	defer rows.Close()

	var reqs []domain.DepositRequest
	for rows.Next() {
		var d domain.DepositRequest
		err := rows.Scan(
			&d.ID, &d.UserID, &d.Amount, &d.Status,
			&d.AdminID, &d.AdminNote, &d.CreatedAt, &d.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, d)
	}
	return reqs, rows.Err()
}

// Create inserts a new deposit request.
func (r *DepositRepo) Create(ctx context.Context, d *domain.DepositRequest) error {
	query := `INSERT INTO deposit_requests (id, user_id, amount, status, admin_id, admin_note, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.UserID, d.Amount, d.Status,
		d.AdminID, d.AdminNote, d.CreatedAt, d.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deposit request: %w", err)
	}
	return nil
}

// GetByID fetches a deposit request by its UUID (without locking).
func (r *DepositRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_requests WHERE id = $1`

	d, err := scanDeposit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get deposit request by id: %w", err)
	}
	return d, nil
}

// GetByIDForUpdate fetches a deposit request with pessimistic locking.
// This MUST be called within a transaction.
func (r *DepositRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_requests WHERE id = $1 FOR UPDATE`

	d, err := scanDeposit(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get deposit request for update: %w", err)
	}
	return d, nil
}

// UpdateStatus moves a deposit request to a terminal status within a transaction.
func (r *DepositRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.DepositStatus, adminID uuid.UUID, processedAt time.Time) error {
	query := `UPDATE deposit_requests SET status = $1, admin_id = $2, processed_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, status, adminID, processedAt, id)
	if err != nil {
		return fmt.Errorf("update deposit request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update deposit request status: request %s not found", id)
	}
	return nil
}

// ListByUser fetches a user's deposit requests, newest first.
func (r *DepositRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_requests WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list deposit requests by user: %w", err)
	}
	reqs, err := scanDeposits(rows)
	if err != nil {
		return nil, fmt.Errorf("scan deposit requests: %w", err)
	}
	return reqs, nil
}

// ListByStatus fetches deposit requests by status, oldest first for the
// admin queue.
func (r *DepositRepo) ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_requests WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list deposit requests by status: %w", err)
	}
	reqs, err := scanDeposits(rows)
	if err != nil {
		return nil, fmt.Errorf("scan deposit requests: %w", err)
	}
	return reqs, nil
}
