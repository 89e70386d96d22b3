package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nightbloom-ai/nightbloom/store"
)

func (d *DB) EnsureUserProfile(ctx context.Context, userID int32) error {
	now := time.Now().Unix()

	stmt := `INSERT INTO user_profile (user_id, nickname, gender, kinks, created_ts, updated_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := d.db.ExecContext(ctx, stmt, userID, "", "", "[]", now, now); err != nil {
		return fmt.Errorf("failed to ensure user_profile: %w", err)
	}
	return nil
}

func (d *DB) GetUserProfile(ctx context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT user_id, nickname, gender, kinks, created_ts, updated_ts FROM user_profile WHERE user_id = ` + placeholder(1)

	result := &store.UserProfile{}
	var kinksJSON string
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.UserID,
		&result.Nickname,
		&result.Gender,
		&kinksJSON,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user_profile: %w", err)
	}
	if err := json.Unmarshal([]byte(kinksJSON), &result.Kinks); err != nil {
		return nil, fmt.Errorf("failed to decode kinks: %w", err)
	}

	return result, nil
}

func (d *DB) UpdateUserProfile(ctx context.Context, update *store.UpdateUserProfile) (int32, error) {
	set, args := []string{}, []any{}
	if update.Nickname != nil {
		set, args = append(set, "nickname = "+placeholder(len(args)+1)), append(args, *update.Nickname)
	}
	if update.Gender != nil {
		set, args = append(set, "gender = "+placeholder(len(args)+1)), append(args, *update.Gender)
	}
	if update.Kinks != nil {
		kinksJSON, err := json.Marshal(*update.Kinks)
		if err != nil {
			return 0, fmt.Errorf("failed to encode kinks: %w", err)
		}
		set, args = append(set, "kinks = "+placeholder(len(args)+1)), append(args, string(kinksJSON))
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("no fields to update")
	}

	updatedTs := update.UpdatedTs
	if updatedTs == 0 {
		updatedTs = time.Now().Unix()
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, updatedTs)
	args = append(args, update.UserID)

	// RETURNING confirms exactly one row matched; zero rows surfaces as
	// an error instead of a silent no-op.
	stmt := `UPDATE user_profile SET ` + strings.Join(set, ", ") + ` WHERE user_id = ` + placeholder(len(args)) + ` RETURNING user_id`
	var id int32
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("failed to update user_profile: no row matched user_id %d", update.UserID)
		}
		return 0, fmt.Errorf("failed to update user_profile: %w", err)
	}
	return id, nil
}
