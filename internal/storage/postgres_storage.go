package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// PostgresStorage is the primary durable state store. The bot_state table
// holds the singleton cursor; replied_tweets enforces the at-most-once
// guarantee through its primary key.
type PostgresStorage struct {
	Pool *pgxpool.Pool

	seedMentionID string
}

func NewPostgresStorage(ctx context.Context, connStr, seedMentionID string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &PostgresStorage{Pool: pool, seedMentionID: seedMentionID}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*PostgresStorage)(nil)

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bot_state (
			id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			last_mention_id TEXT NOT NULL,
			last_processed_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS replied_tweets (
			tweet_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) GetCursor(ctx context.Context) (domain.Cursor, error) {
	var c domain.Cursor
	err := s.Pool.QueryRow(ctx,
		"SELECT last_mention_id, last_processed_at FROM bot_state WHERE id = 1").
		Scan(&c.LastMentionID, &c.LastProcessedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return c, storageErr("get cursor", err)
	}

	c = domain.Cursor{LastMentionID: s.seedMentionID, LastProcessedAt: time.Now().UTC()}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO bot_state (id, last_mention_id, last_processed_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		c.LastMentionID, c.LastProcessedAt)
	if err != nil {
		return c, storageErr("seed cursor", err)
	}
	return c, nil
}

func (s *PostgresStorage) UpdateCursor(ctx context.Context, upd domain.CursorUpdate) (domain.Cursor, error) {
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

	_, err = s.Pool.Exec(ctx,
		"UPDATE bot_state SET last_mention_id = $1, last_processed_at = $2 WHERE id = 1",
		cur.LastMentionID, cur.LastProcessedAt)
	if err != nil {
		return cur, storageErr("update cursor", err)
	}
	return cur, nil
}

func (s *PostgresStorage) HasReplied(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM replied_tweets WHERE tweet_id = $1)", tweetID).
		Scan(&exists)
	if err != nil {
		return false, storageErr("check replied", err)
	}
	return exists, nil
}

func (s *PostgresStorage) MarkReplied(ctx context.Context, tweetID string) (ports.InsertOutcome, error) {
	tag, err := s.Pool.Exec(ctx,
		"INSERT INTO replied_tweets (tweet_id) VALUES ($1) ON CONFLICT DO NOTHING", tweetID)
	if err != nil {
		return ports.AlreadyExists, storageErr("mark replied", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.AlreadyExists, nil
	}
	return ports.Inserted, nil
}

func (s *PostgresStorage) ListReplied(ctx context.Context) ([]domain.RepliedMarker, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT tweet_id, created_at FROM replied_tweets ORDER BY created_at DESC")
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

func (s *PostgresStorage) Close() {
	s.Pool.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
