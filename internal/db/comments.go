package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yatube/internal/models"
)

const commentSelect = `
SELECT c.id, c.text, c.author_id, u.username, c.post_id, c.created
  FROM comments c
  JOIN users u ON u.id = c.author_id
`

func scanComment(row pgx.Row, c *models.Comment) error {
	return row.Scan(&c.ID, &c.Text, &c.AuthorID, &c.Author, &c.PostID, &c.Created)
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	err := s.pool.QueryRow(ctx, `
WITH c AS (
    INSERT INTO comments (text, author_id, post_id)
    VALUES ($1, $2, $3)
    RETURNING id, author_id, created
)
SELECT c.id, u.username, c.created
  FROM c
  JOIN users u ON u.id = c.author_id
`, c.Text, c.AuthorID, c.PostID).Scan(&c.ID, &c.Author, &c.Created)
	return mapErr(err, "insert comment")
}

// GetComment only finds the comment when it belongs to postID.
func (s *Store) GetComment(ctx context.Context, postID, id int64) (*models.Comment, error) {
	var c models.Comment
	err := scanComment(s.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1 AND c.post_id = $2`, id, postID), &c)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("comment %d on post %d", id, postID))
	}
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created, c.id`, postID)
	if err != nil {
		return nil, mapErr(err, "list comments")
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	tag, err := s.pool.Exec(ctx, `UPDATE comments SET text = $3 WHERE id = $1 AND post_id = $2`, c.ID, c.PostID, c.Text)
	if err != nil {
		return mapErr(err, "update comment")
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, fmt.Sprintf("comment %d", c.ID))
	}
	err = scanComment(s.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, c.ID), c)
	return mapErr(err, "reload comment")
}

func (s *Store) DeleteComment(ctx context.Context, postID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND post_id = $2`, id, postID)
	if err != nil {
		return mapErr(err, "delete comment")
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, fmt.Sprintf("comment %d", id))
	}
	return nil
}
