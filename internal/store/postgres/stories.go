package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storydoc/internal/store"
)

func (c *Client) UpsertStory(ctx context.Context, s store.StoryInput) error {
	query := `
	INSERT INTO stories (name, source_file, source_hash, source, chapter_count, group_count, node_count, character_count, valid, last_ingested)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (name) DO UPDATE SET
		source_file = EXCLUDED.source_file,
		source_hash = EXCLUDED.source_hash,
		source = EXCLUDED.source,
		chapter_count = EXCLUDED.chapter_count,
		group_count = EXCLUDED.group_count,
		node_count = EXCLUDED.node_count,
		character_count = EXCLUDED.character_count,
		valid = EXCLUDED.valid,
		last_ingested = now()
	`

	_, err := c.pool.Exec(ctx, query,
		s.Name, s.SourceFile, s.SourceHash, s.Source,
		s.Chapters, s.Groups, s.Nodes, s.Characters, s.Valid,
	)
	if err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}
	return nil
}

func (c *Client) GetStory(ctx context.Context, name string) (*store.Story, error) {
	query := `
	SELECT name, source_file, source_hash, source, chapter_count, group_count, node_count, character_count, valid, last_ingested
	FROM stories WHERE name = $1
	`

	var s store.Story
	err := c.pool.QueryRow(ctx, query, name).Scan(
		&s.Name, &s.SourceFile, &s.SourceHash, &s.Source,
		&s.Chapters, &s.Groups, &s.Nodes, &s.Characters,
		&s.Valid, &s.LastIngested,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}
	return &s, nil
}

func (c *Client) ListStories(ctx context.Context) ([]store.StorySummary, error) {
	query := `
	SELECT name, source_file, chapter_count, group_count, node_count, character_count, valid
	FROM stories ORDER BY name
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	var out []store.StorySummary
	for rows.Next() {
		var s store.StorySummary
		if err := rows.Scan(&s.Name, &s.SourceFile, &s.Chapters, &s.Groups, &s.Nodes, &s.Characters, &s.Valid); err != nil {
			return nil, fmt.Errorf("scanning story row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT source_file, source_hash FROM stories`)
	if err != nil {
		return nil, fmt.Errorf("getting source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var file, hash string
		if err := rows.Scan(&file, &hash); err != nil {
			return nil, fmt.Errorf("scanning hash row: %w", err)
		}
		hashes[file] = hash
	}
	return hashes, rows.Err()
}

func (c *Client) RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		res, err := c.pool.Exec(ctx, `DELETE FROM stories`)
		if err != nil {
			return 0, fmt.Errorf("removing stale stories: %w", err)
		}
		return res.RowsAffected(), nil
	}

	res, err := c.pool.Exec(ctx, `DELETE FROM stories WHERE source_file <> ALL($1)`, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale stories: %w", err)
	}
	return res.RowsAffected(), nil
}
