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

// CreateInvitation persists a pending invitation.
func (s *Store) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO invitations (id, group_id, email, invited_by_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		inv.ID, inv.GroupID, inv.Email, inv.InvitedByID, inv.Status, inv.CreatedAt,
	)
	if err != nil {
		return s.wrapInsert(err, "invitation")
	}
	return nil
}

// GetInvitation retrieves an invitation by ID.
func (s *Store) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, group_id, email, invited_by_id, status, created_at
		FROM invitations WHERE id = ?`),
		id,
	).Scan(&inv.ID, &inv.GroupID, &inv.Email, &inv.InvitedByID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, notFound(err, "invitation", id)
	}
	return inv, nil
}

// AcceptInvitation closes a pending invitation and adds the member.
func (s *Store) AcceptInvitation(ctx context.Context, invitationID string, m *models.Membership, log *models.ActivityLog) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.closeInvitation(ctx, tx, invitationID, models.InvitationAccepted); err != nil {
			return err
		}
		return s.addMember(ctx, tx, m, log)
	})
}

// DeclineInvitation closes a pending invitation without joining.
func (s *Store) DeclineInvitation(ctx context.Context, invitationID string) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		return s.closeInvitation(ctx, tx, invitationID, models.InvitationDeclined)
	})
}

func (s *Store) closeInvitation(ctx context.Context, tx *sql.Tx, id string, status models.InvitationStatus) error {
	res, err := tx.ExecContext(ctx, s.q(
		"UPDATE invitations SET status = ? WHERE id = ? AND status = ?"),
		status, id, models.InvitationPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated invitation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pending invitation %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
