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

// CreateGroup persists a new group and adds creatorID as its admin.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group, creatorID string) error {
	// Generate IDs if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(
			"INSERT INTO groups (id, name, description, created_at) VALUES (?, ?, ?, ?)"),
			group.ID, group.Name, group.Description, group.CreatedAt,
		)
		if err != nil {
			return s.wrapInsert(err, "group")
		}

		_, err = tx.ExecContext(ctx, s.q(
			"INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)"),
			group.ID, creatorID, models.RoleAdmin, group.CreatedAt,
		)
		if err != nil {
			return s.wrapInsert(err, "membership")
		}
		return nil
	})
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx, s.q(
		"SELECT id, name, description, created_at FROM groups WHERE id = ?"),
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt)
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}
	return group, nil
}

// ListGroupsForUser retrieves the groups a user currently belongs to,
// newest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT g.id, g.name, g.description, g.created_at
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at DESC, g.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// GetMembership retrieves the active membership of a user in a group.
func (s *Store) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx, s.q(
		"SELECT group_id, user_id, role, joined_at FROM memberships WHERE group_id = ? AND user_id = ?"),
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, notFound(err, "membership", groupID+"/"+userID)
	}
	return m, nil
}

// ListMemberships retrieves a group's active memberships in join order.
func (s *Store) ListMemberships(ctx context.Context, groupID string) ([]models.Membership, error) {
	return s.listMemberships(ctx, s.db, groupID)
}

func (s *Store) listMemberships(ctx context.Context, db queryer, groupID string) ([]models.Membership, error) {
	rows, err := db.QueryContext(ctx, s.q(`
		SELECT group_id, user_id, role, joined_at
		FROM memberships WHERE group_id = ?
		ORDER BY joined_at, user_id`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return memberships, nil
}

// AddMember inserts a membership together with its activity log entry.
func (s *Store) AddMember(ctx context.Context, m *models.Membership, log *models.ActivityLog) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		return s.addMember(ctx, tx, m, log)
	})
}

func (s *Store) addMember(ctx context.Context, tx *sql.Tx, m *models.Membership, log *models.ActivityLog) error {
	if m.JoinedAt == 0 {
		m.JoinedAt = time.Now().Unix()
	}
	_, err := tx.ExecContext(ctx, s.q(
		"INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)"),
		m.GroupID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return s.wrapInsert(err, "membership")
	}
	return s.insertLog(ctx, tx, log)
}

// RemoveMember deletes a membership and records who removed it. Historical
// expenses and settlements are left untouched.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID string, log *models.ActivityLog) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(
			"DELETE FROM memberships WHERE group_id = ? AND user_id = ?"),
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check deleted membership: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("membership %s/%s: %w", groupID, userID, storage.ErrNotFound)
		}
		return s.insertLog(ctx, tx, log)
	})
}

func (s *Store) insertLog(ctx context.Context, tx *sql.Tx, log *models.ActivityLog) error {
	if log == nil {
		return nil
	}
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt == 0 {
		log.CreatedAt = time.Now().Unix()
	}
	_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO activity_logs (id, group_id, action, subject_id, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		log.ID, log.GroupID, log.Action, log.SubjectID, log.ActorID, log.CreatedAt,
	)
	if err != nil {
		return s.wrapInsert(err, "activity log")
	}
	return nil
}

// CreateGhostMember inserts a ghost user and makes it a member of the group.
func (s *Store) CreateGhostMember(ctx context.Context, user *models.User, m *models.Membership, log *models.ActivityLog) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.createUser(ctx, tx, user); err != nil {
			return err
		}
		m.UserID = user.ID
		if log != nil {
			log.SubjectID = user.ID
		}
		return s.addMember(ctx, tx, m, log)
	})
}
