package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense persists an expense and its splits in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO expenses (id, group_id, description, amount, paid_by_id, category, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			expense.ID,
			expense.GroupID,
			expense.Description,
			expense.Amount.StringFixed(2),
			expense.PaidByID,
			expense.Category,
			expense.Date,
			expense.CreatedAt,
		)
		if err != nil {
			return s.wrapInsert(err, "expense")
		}

		for i := range expense.Splits {
			sp := &expense.Splits[i]
			sp.ExpenseID = expense.ID
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO expense_splits (expense_id, user_id, amount, position)
				VALUES (?, ?, ?, ?)`),
				sp.ExpenseID, sp.UserID, sp.Amount.StringFixed(2), i,
			)
			if err != nil {
				return s.wrapInsert(err, "expense split")
			}
		}
		return nil
	})
}

const settlementColumns = `id, group_id, from_user_id, to_user_id, amount, method, status, notes, created_by, created_at, confirmed_at`

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	st := &models.Settlement{}
	if err := row.Scan(
		&st.ID,
		&st.GroupID,
		&st.FromUserID,
		&st.ToUserID,
		&st.Amount,
		&st.Method,
		&st.Status,
		&st.Notes,
		&st.CreatedBy,
		&st.CreatedAt,
		&st.ConfirmedAt,
	); err != nil {
		return nil, err
	}
	return st, nil
}

// CreateSettlement inserts a new settlement into the database.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO settlements (`+settlementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		settlement.ID,
		settlement.GroupID,
		settlement.FromUserID,
		settlement.ToUserID,
		settlement.Amount.StringFixed(2),
		settlement.Method,
		settlement.Status,
		settlement.Notes,
		settlement.CreatedBy,
		settlement.CreatedAt,
		settlement.ConfirmedAt,
	)
	if err != nil {
		return s.wrapInsert(err, "settlement")
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`), settlementID)
	st, err := scanSettlement(row)
	if err != nil {
		return nil, notFound(err, "settlement", settlementID)
	}
	return st, nil
}

// SetSettlementStatus moves a pending settlement to status. Returns
// ErrNotFound if the settlement does not exist or is no longer pending.
func (s *Store) SetSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, at int64) error {
	result, err := s.db.ExecContext(ctx, s.q(`
		UPDATE settlements SET status = ?, confirmed_at = ?
		WHERE id = ? AND status = 'pending'`),
		status, at, settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pending settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

// DeleteSettlement removes a settlement by ID.
func (s *Store) DeleteSettlement(ctx context.Context, settlementID string) error {
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM settlements WHERE id = ?`), settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}
