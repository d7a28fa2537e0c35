package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// SQLiteStorage is the embedded fallback store used when no DATABASE_URL is
// configured. Same contract as PostgresStorage; the tweet_id primary key
// provides the atomic unique-insert the dedup guarantee rests on.
type SQLiteStorage struct {
	db *sql.DB

	seedMentionID string
}

func NewSQLiteStorage(path, seedMentionID string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	s := &SQLiteStorage{db: db, seedMentionID: seedMentionID}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*SQLiteStorage)(nil)

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bot_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_mention_id TEXT NOT NULL,
		last_processed_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS replied_tweets (
		tweet_id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetCursor(ctx context.Context) (domain.Cursor, error) {
	var c domain.Cursor
	err := s.db.QueryRowContext(ctx,
		"SELECT last_mention_id, last_processed_at FROM bot_state WHERE id = 1").
		Scan(&c.LastMentionID, &c.LastProcessedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c, storageErr("get cursor", err)
	}

	c = domain.Cursor{LastMentionID: s.seedMentionID, LastProcessedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO bot_state (id, last_mention_id, last_processed_at) VALUES (1, ?, ?)",
		c.LastMentionID, c.LastProcessedAt)
	if err != nil {
		return c, storageErr("seed cursor", err)
	}
	return c, nil
}

func (s *SQLiteStorage) UpdateCursor(ctx context.Context, upd domain.CursorUpdate) (domain.Cursor, error) {
	cur, err := s.GetCursor(ctx)
	if err != nil {
		return cur, err
	}
	if upd.LastMentionID != nil {
		cur.LastMentionID = *upd.LastMentionID
	}
	if upd.LastProcessedAt != nil {
		cur.LastProcessedAt = *upd.LastProcessedAt
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE bot_state SET last_mention_id = ?, last_processed_at = ? WHERE id = 1",
		cur.LastMentionID, cur.LastProcessedAt)
	if err != nil {
		return cur, storageErr("update cursor", err)
	}
	return cur, nil
}

func (s *SQLiteStorage) HasReplied(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM replied_tweets WHERE tweet_id = ?)", tweetID).
		Scan(&exists)
	if err != nil {
		return false, storageErr("check replied", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) MarkReplied(ctx context.Context, tweetID string) (ports.InsertOutcome, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO replied_tweets (tweet_id, created_at) VALUES (?, ?)",
		tweetID, time.Now().UTC())
	if err != nil {
		return ports.AlreadyExists, storageErr("mark replied", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ports.AlreadyExists, storageErr("mark replied", err)
	}
	if n == 0 {
		return ports.AlreadyExists, nil
	}
	return ports.Inserted, nil
}

func (s *SQLiteStorage) ListReplied(ctx context.Context) ([]domain.RepliedMarker, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tweet_id, created_at FROM replied_tweets ORDER BY created_at DESC, tweet_id DESC")
	if err != nil {
		return nil, storageErr("list replied", err)
	}
	defer rows.Close()

	var res []domain.RepliedMarker
	for rows.Next() {
		var m domain.RepliedMarker
		if err := rows.Scan(&m.TweetID, &m.CreatedAt); err != nil {
			return nil, storageErr("scan marker", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
