package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yatube/internal/models"
)

const postSelect = `
SELECT p.id, p.text, p.author_id, u.username, p.group_id, p.pub_date
  FROM posts p
  JOIN users u ON u.id = p.author_id
`

func scanPost(row pgx.Row, p *models.Post) error {
	return row.Scan(&p.ID, &p.Text, &p.AuthorID, &p.Author, &p.GroupID, &p.PubDate)
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	err := s.pool.QueryRow(ctx, `
WITH p AS (
    INSERT INTO posts (text, author_id, group_id)
    VALUES ($1, $2, $3)
    RETURNING id, author_id, pub_date
)
SELECT p.id, u.username, p.pub_date
  FROM p
  JOIN users u ON u.id = p.author_id
`, p.Text, p.AuthorID, p.GroupID).Scan(&p.ID, &p.Author, &p.PubDate)
	return mapErr(err, "insert post")
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	if err := scanPost(s.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id), &p); err != nil {
		return nil, mapErr(err, fmt.Sprintf("post %d", id))
	}
	return &p, nil
}

func (s *Store) ListPosts(ctx context.Context, pg models.Page) ([]models.Post, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, mapErr(err, "count posts")
	}

	rows, err := s.pool.Query(ctx, postSelect+` ORDER BY p.id LIMIT $1 OFFSET $2`, limitArg(pg), offsetArg(pg))
	if err != nil {
		return nil, 0, mapErr(err, "list posts")
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// UpdatePost writes text and group, then reloads p. The author column is
// never touched.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	tag, err := s.pool.Exec(ctx, `UPDATE posts SET text = $2, group_id = $3 WHERE id = $1`, p.ID, p.Text, p.GroupID)
	if err != nil {
		return mapErr(err, "update post")
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, fmt.Sprintf("post %d", p.ID))
	}
	return mapErr(scanPost(s.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, p.ID), p), "reload post")
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete post")
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, fmt.Sprintf("post %d", id))
	}
	return nil
}
