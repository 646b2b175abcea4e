package db

import (
	"context"
	"fmt"

	"yatube/internal/models"
)

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO groups (title, slug, description) VALUES ($1, $2, $3) RETURNING id`,
		g.Title, g.Slug, g.Description,
	).Scan(&g.ID)
	return mapErr(err, "insert group")
}

func (s *Store) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	var g models.Group
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, slug, description FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("group %d", id))
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context, p models.Page) ([]models.Group, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM groups`).Scan(&total); err != nil {
		return nil, 0, mapErr(err, "count groups")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, slug, description FROM groups ORDER BY id LIMIT $1 OFFSET $2`,
		limitArg(p), offsetArg(p),
	)
	if err != nil {
		return nil, 0, mapErr(err, "list groups")
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, 0, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, total, rows.Err()
}
