package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// LoadSnapshot reads memberships, expenses, splits, settlements, logs and the
// users they reference inside a single read transaction, so the ledger never
// sees a half-applied removal.
func (s *Store) LoadSnapshot(ctx context.Context, groupID string) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{GroupID: groupID}

	err := s.inTx(ctx, s.dialect.SnapshotTx, func(tx *sql.Tx) error {
		var err error
		if snap.Memberships, err = s.listMemberships(ctx, tx, groupID); err != nil {
			return err
		}

		expenses, err := s.listExpenses(ctx, tx, groupID)
		if err != nil {
			return err
		}
		splits, err := s.listSplits(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if snap.Expenses, err = ledger.AttachSplits(expenses, splits); err != nil {
			return err
		}

		if snap.Settlements, err = s.listSettlements(ctx, tx, groupID); err != nil {
			return err
		}
		if snap.Logs, err = s.listLogs(ctx, tx, groupID); err != nil {
			return err
		}

		users, err := s.usersByIDs(ctx, tx, referencedUsers(snap))
		if err != nil {
			return err
		}
		snap.Users = make(map[string]models.User, len(users))
		for id, u := range users {
			snap.Users[id] = *u
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for group %s: %w", groupID, err)
	}
	return snap, nil
}

// referencedUsers collects every user ID the snapshot mentions.
func referencedUsers(snap *ledger.Snapshot) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, m := range snap.Memberships {
		add(m.UserID)
	}
	for _, e := range snap.Expenses {
		add(e.PaidByID)
		for _, sp := range e.Splits {
			add(sp.UserID)
		}
	}
	for _, st := range snap.Settlements {
		add(st.FromUserID)
		add(st.ToUserID)
	}
	for _, l := range snap.Logs {
		add(l.SubjectID)
		add(l.ActorID)
	}
	return ids
}

func (s *Store) listExpenses(ctx context.Context, tx *sql.Tx, groupID string) ([]models.Expense, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT id, group_id, description, amount, paid_by_id, category, date, created_at
		FROM expenses WHERE group_id = ?
		ORDER BY created_at, id`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidByID, &e.Category, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func (s *Store) listSplits(ctx context.Context, tx *sql.Tx, groupID string) ([]models.ExpenseSplit, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT sp.expense_id, sp.user_id, sp.amount
		FROM expense_splits sp
		JOIN expenses e ON e.id = sp.expense_id
		WHERE e.group_id = ?
		ORDER BY sp.expense_id, sp.position`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer rows.Close()

	var splits []models.ExpenseSplit
	for rows.Next() {
		var sp models.ExpenseSplit
		if err := rows.Scan(&sp.ExpenseID, &sp.UserID, &sp.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return splits, nil
}

func (s *Store) listSettlements(ctx context.Context, tx *sql.Tx, groupID string) ([]models.Settlement, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT `+settlementColumns+` FROM settlements
		WHERE group_id = ?
		ORDER BY created_at, id`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

func (s *Store) listLogs(ctx context.Context, tx *sql.Tx, groupID string) ([]models.ActivityLog, error) {
	rows, err := tx.QueryContext(ctx, s.q(`
		SELECT id, group_id, action, subject_id, actor_id, created_at
		FROM activity_logs WHERE group_id = ?
		ORDER BY created_at, id`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.GroupID, &l.Action, &l.SubjectID, &l.ActorID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}
	return logs, nil
}
