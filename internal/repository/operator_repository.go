package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/1300Sarthak/CS157a/internal/models"
)

const operatorColumns = `id, email, password_hash, full_name, role, active, last_login, created_at, updated_at`

// OperatorRepository provides database access for staff accounts and the audit trail.
type OperatorRepository struct {
	db *sqlx.DB
}

// NewOperatorRepository creates a new instance of OperatorRepository.
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// FindByEmail returns an operator by email address.
func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (*models.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email = $1 LIMIT 1`
	var operator models.Operator
	if err := r.db.GetContext(ctx, &operator, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find operator by email: %w", err)
	}
	return &operator, nil
}

// FindByID returns an operator by identifier.
func (r *OperatorRepository) FindByID(ctx context.Context, id string) (*models.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1 LIMIT 1`
	var operator models.Operator
	if err := r.db.GetContext(ctx, &operator, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find operator by id: %w", err)
	}
	return &operator, nil
}

// UpdateLastLogin updates the last_login timestamp for an operator.
func (r *OperatorRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE operators SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *OperatorRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, operator_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at) VALUES (:id, :operator_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
