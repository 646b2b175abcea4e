package db

import (
	"context"
	"fmt"
	"strings"

	"yatube/internal/models"
)

func (s *Store) FollowExists(ctx context.Context, userID, followingID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND following_id = $2)`,
		userID, followingID,
	).Scan(&exists)
	return exists, mapErr(err, "follow exists")
}

// CreateFollow relies on follows_user_id_following_id_key and
// follows_no_self_follow to reject what a concurrent request slipped past
// the application checks.
func (s *Store) CreateFollow(ctx context.Context, f *models.Follow) error {
	err := s.pool.QueryRow(ctx, `
WITH f AS (
    INSERT INTO follows (user_id, following_id)
    VALUES ($1, $2)
    RETURNING id, user_id, following_id
)
SELECT f.id, u.username, g.username
  FROM f
  JOIN users u ON u.id = f.user_id
  JOIN users g ON g.id = f.following_id
`, f.UserID, f.FollowingID).Scan(&f.ID, &f.User, &f.Following)
	return mapErr(err, fmt.Sprintf("insert follow %d->%d", f.UserID, f.FollowingID))
}

func (s *Store) ListFollows(ctx context.Context, userID int64, search string) ([]models.Follow, error) {
	q := `
SELECT f.id, f.user_id, u.username, f.following_id, g.username
  FROM follows f
  JOIN users u ON u.id = f.user_id
  JOIN users g ON g.id = f.following_id
 WHERE f.user_id = $1
`
	args := []any{userID}
	for _, term := range strings.Fields(search) {
		args = append(args, containsPattern(term))
		q += fmt.Sprintf(` AND g.username ILIKE $%d`, len(args))
	}
	q += ` ORDER BY f.id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err, "list follows")
	}
	defer rows.Close()

	follows := []models.Follow{}
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.ID, &f.UserID, &f.User, &f.FollowingID, &f.Following); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}
