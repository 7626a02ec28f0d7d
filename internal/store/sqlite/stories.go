package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storydoc/internal/store"
)

func (c *Client) UpsertStory(ctx context.Context, s store.StoryInput) error {
	query := `
	INSERT INTO stories (name, source_file, source_hash, source, chapter_count, group_count, node_count, character_count, valid, last_ingested)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (name) DO UPDATE SET
		source_file = excluded.source_file,
		source_hash = excluded.source_hash,
		source = excluded.source,
		chapter_count = excluded.chapter_count,
		group_count = excluded.group_count,
		node_count = excluded.node_count,
		character_count = excluded.character_count,
		valid = excluded.valid,
		last_ingested = datetime('now')
	`

	_, err := c.db.ExecContext(ctx, query,
		s.Name,
		s.SourceFile,
		s.SourceHash,
		s.Source,
		s.Chapters,
		s.Groups,
		s.Nodes,
		s.Characters,
		boolToInt(s.Valid),
	)
	if err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}
	return nil
}

func (c *Client) GetStory(ctx context.Context, name string) (*store.Story, error) {
	query := `
	SELECT name, source_file, source_hash, source, chapter_count, group_count, node_count, character_count, valid, last_ingested
	FROM stories WHERE name = ?
	`

	var s store.Story
	var valid int
	var ingested string
	err := c.db.QueryRowContext(ctx, query, name).Scan(
		&s.Name, &s.SourceFile, &s.SourceHash, &s.Source,
		&s.Chapters, &s.Groups, &s.Nodes, &s.Characters,
		&valid, &ingested,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}
	s.Valid = valid != 0
	if t, err := time.Parse("2006-01-02 15:04:05", ingested); err == nil {
		s.LastIngested = t
	}
	return &s, nil
}

func (c *Client) ListStories(ctx context.Context) ([]store.StorySummary, error) {
	query := `
	SELECT name, source_file, chapter_count, group_count, node_count, character_count, valid
	FROM stories ORDER BY name
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	var out []store.StorySummary
	for rows.Next() {
		var s store.StorySummary
		var valid int
		if err := rows.Scan(&s.Name, &s.SourceFile, &s.Chapters, &s.Groups, &s.Nodes, &s.Characters, &valid); err != nil {
			return nil, fmt.Errorf("scanning story row: %w", err)
		}
		s.Valid = valid != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT source_file, source_hash FROM stories`)
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
		res, err := c.db.ExecContext(ctx, `DELETE FROM stories`)
		if err != nil {
			return 0, fmt.Errorf("removing stale stories: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(currentSourceFiles)), ",")
	args := make([]any, 0, len(currentSourceFiles))
	for _, f := range currentSourceFiles {
		args = append(args, f)
	}

	query := fmt.Sprintf(`DELETE FROM stories WHERE source_file NOT IN (%s)`, placeholders)
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale stories: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
