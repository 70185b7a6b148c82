package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leemorgale/sms-chat/internal/models"
)

// GroupRepository defines the interface for group and membership data access
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context, search string) ([]*models.Group, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Group, error)
	AddMember(ctx context.Context, groupID, userID string) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID string) (bool, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.User, error)
}

// groupRepository implements GroupRepository interface
type groupRepository struct {
	db *Database
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *Database) GroupRepository {
	return &groupRepository{db: db}
}

// Bound number and member count are materialized on every read
const groupSelect = `
	SELECT g.id, g.name, g.created_at, p.phone_number,
		(SELECT COUNT(*) FROM user_groups c WHERE c.group_id = g.id) AS user_count
	FROM groups g
	LEFT JOIN phone_numbers p ON p.group_id = g.id AND p.status = 'ASSIGNED'
`

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.CreatedAt,
		&group.PhoneNumber,
		&group.UserCount,
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Create creates a new group in the database
func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if group == nil {
		return fmt.Errorf("group cannot be nil")
	}

	query := r.db.rebind(`INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)`)

	_, err := r.db.db.ExecContext(ctx, query, group.ID, group.Name, group.CreatedAt)
	if err != nil {
		return wrapWriteError("failed to create group", err)
	}

	return nil
}

// GetByID retrieves a group by ID
func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	if id == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}

	query := r.db.rebind(groupSelect + ` WHERE g.id = ?`)

	group, err := scanGroup(r.db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by ID: %w", err)
	}

	return group, nil
}

// List retrieves groups, optionally filtered by a case-insensitive name substring
func (r *groupRepository) List(ctx context.Context, search string) ([]*models.Group, error) {
	query := groupSelect
	var args []any

	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE LOWER(g.name) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	query += ` ORDER BY g.created_at, g.id`

	return r.list(ctx, r.db.rebind(query), args...)
}

// ListByUser returns the user's groups in the order they were joined
func (r *groupRepository) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := r.db.rebind(groupSelect + `
		INNER JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = ?
		ORDER BY ug.joined_at, g.id
	`)

	return r.list(ctx, query, userID)
}

func (r *groupRepository) list(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// AddMember inserts a membership; false means the user was already a member
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	if groupID == "" || userID == "" {
		return false, fmt.Errorf("group ID and user ID cannot be empty")
	}

	query := r.db.rebind(`
		INSERT INTO user_groups (user_id, group_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`)

	result, err := r.db.db.ExecContext(ctx, query, userID, groupID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add user to group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// RemoveMember deletes a membership; false means there was none
func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	if groupID == "" || userID == "" {
		return false, fmt.Errorf("group ID and user ID cannot be empty")
	}

	query := r.db.rebind(`DELETE FROM user_groups WHERE user_id = ? AND group_id = ?`)

	result, err := r.db.db.ExecContext(ctx, query, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to remove user from group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// IsMember reports whether the user belongs to the group
func (r *groupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	query := r.db.rebind(`SELECT COUNT(*) FROM user_groups WHERE user_id = ? AND group_id = ?`)

	var count int
	if err := r.db.db.QueryRowContext(ctx, query, userID, groupID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}

	return count > 0, nil
}

// ListMembers returns the group's members in join order
func (r *groupRepository) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}

	query := r.db.rebind(`
		SELECT u.id, u.name, u.phone_number, u.created_at
		FROM users u
		INNER JOIN user_groups ug ON ug.user_id = u.id
		WHERE ug.group_id = ?
		ORDER BY ug.joined_at, u.id
	`)

	rows, err := r.db.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}

	return users, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
