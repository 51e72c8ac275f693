package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	link TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS tags (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS messages (
	channel_id INTEGER NOT NULL REFERENCES channels(id),
	message_id INTEGER NOT NULL,
	posted_at INTEGER NOT NULL,
	text TEXT NOT NULL,
	views INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (channel_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_posted ON messages(posted_at);
`

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating the parent
// directory if missing, and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.With("db_path", path).Wrapf(err, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.With("db_path", path).Wrapf(translateError(err), "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, oops.With("db_path", path).Wrapf(translateError(err), "database connection failed")
	}

	// SQLite does not enforce foreign keys by default; WAL lets read-only
	// aggregation run while a batch is being written.
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA journal_mode = WAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, oops.With("pragma", pragma).Wrap(translateError(err))
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, oops.With("db_path", path).Wrapf(translateError(err), "failed to initialize schema")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertChannel(ctx context.Context, id int64, name, link string) (*channelDomain.Channel, error) {
	if id == 0 {
		return nil, oops.With("channel_id", id).Wrap(ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channels (id, name, link, is_active) VALUES (?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, link = excluded.link`,
		id, name, link,
	)
	if err != nil {
		return nil, oops.With("channel_id", id).Wrap(translateError(err))
	}
	return s.GetChannel(ctx, id)
}

func (s *SQLiteStore) SetChannelActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE channels SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return oops.With("channel_id", id).Wrap(translateError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return oops.With("channel_id", id).Wrap(translateError(err))
	}
	if affected == 0 {
		return oops.With("channel_id", id).Wrap(ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetChannel(ctx context.Context, id int64) (*channelDomain.Channel, error) {
	var ch channelDomain.Channel
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, link, is_active FROM channels WHERE id = ?`, id,
	).Scan(&ch.ID, &ch.Name, &ch.Link, &active)
	if err != nil {
		return nil, oops.With("channel_id", id).Wrap(translateError(err))
	}
	ch.IsActive = active != 0
	return &ch, nil
}

func (s *SQLiteStore) ListChannels(ctx context.Context, activeOnly bool) ([]*channelDomain.Channel, error) {
	query := `SELECT id, name, link, is_active FROM channels`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, oops.Wrap(translateError(err))
	}
	defer rows.Close()

	var channels []*channelDomain.Channel
	for rows.Next() {
		var ch channelDomain.Channel
		var active int
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Link, &active); err != nil {
			return nil, oops.Wrap(translateError(err))
		}
		ch.IsActive = active != 0
		channels = append(channels, &ch)
	}
	return channels, oops.Wrap(translateError(rows.Err()))
}

func (s *SQLiteStore) AddTag(ctx context.Context, name string) (*tagDomain.Tag, error) {
	normalized := tagDomain.Normalize(name)
	if normalized == "" {
		return nil, oops.With("tag", name).Wrap(ErrInvalidInput)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE name = ?`, normalized).Scan(&exists)
	if err != nil {
		return nil, oops.With("tag", normalized).Wrap(translateError(err))
	}
	if exists > 0 {
		return nil, oops.With("tag", normalized).Wrap(ErrAlreadyExists)
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, normalized); err != nil {
		return nil, oops.With("tag", normalized).Wrap(translateError(err))
	}
	return &tagDomain.Tag{Name: normalized}, nil
}

func (s *SQLiteStore) RemoveTag(ctx context.Context, name string) error {
	normalized := tagDomain.Normalize(name)
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, normalized)
	if err != nil {
		return oops.With("tag", normalized).Wrap(translateError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return oops.With("tag", normalized).Wrap(translateError(err))
	}
	if affected == 0 {
		return oops.With("tag", normalized).Wrap(ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListTags(ctx context.Context) ([]tagDomain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, oops.Wrap(translateError(err))
	}
	defer rows.Close()

	var tags []tagDomain.Tag
	for rows.Next() {
		var t tagDomain.Tag
		if err := rows.Scan(&t.Name); err != nil {
			return nil, oops.Wrap(translateError(err))
		}
		tags = append(tags, t)
	}
	return tags, oops.Wrap(translateError(rows.Err()))
}

// UpsertMessages runs the whole batch in one transaction so overlapping
// merges never observe a partially-written batch. Each record is merged
// with a lookup-then-conditional-write: text and posted timestamp are
// never rewritten, views follow latest-write-wins.
func (s *SQLiteStore) UpsertMessages(ctx context.Context, channelID int64, batch []messageDomain.RawMessage) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, oops.With("channel_id", channelID).Wrap(translateError(err))
	}
	defer tx.Rollback()

	inserted := 0
	for _, raw := range batch {
		var views int64
		err := tx.QueryRowContext(ctx,
			`SELECT views FROM messages WHERE channel_id = ? AND message_id = ?`,
			channelID, raw.MessageID,
		).Scan(&views)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO messages (channel_id, message_id, posted_at, text, views) VALUES (?, ?, ?, ?, ?)`,
				channelID, raw.MessageID, raw.PostedAt.UTC().Unix(), raw.Text, raw.Views,
			)
			if err != nil {
				return 0, oops.With("channel_id", channelID, "message_id", raw.MessageID).Wrap(translateError(err))
			}
			inserted++
		case err != nil:
			return 0, oops.With("channel_id", channelID, "message_id", raw.MessageID).Wrap(translateError(err))
		case views != raw.Views:
			_, err = tx.ExecContext(ctx,
				`UPDATE messages SET views = ? WHERE channel_id = ? AND message_id = ?`,
				raw.Views, channelID, raw.MessageID,
			)
			if err != nil {
				return 0, oops.With("channel_id", channelID, "message_id", raw.MessageID).Wrap(translateError(err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, oops.With("channel_id", channelID).Wrap(translateError(err))
	}
	return inserted, nil
}

func (s *SQLiteStore) QueryMessages(ctx context.Context, from, to time.Time, channelID int64) ([]messageDomain.Message, error) {
	query := `SELECT channel_id, message_id, posted_at, text, views FROM messages
		WHERE posted_at >= ? AND posted_at < ?`
	args := []any{from.UTC().Unix(), to.UTC().Unix()}
	if channelID != 0 {
		query += ` AND channel_id = ?`
		args = append(args, channelID)
	}
	query += ` ORDER BY posted_at ASC, channel_id ASC, message_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Wrap(translateError(err))
	}
	defer rows.Close()

	var messages []messageDomain.Message
	for rows.Next() {
		var m messageDomain.Message
		var posted int64
		if err := rows.Scan(&m.ChannelID, &m.MessageID, &posted, &m.Text, &m.Views); err != nil {
			return nil, oops.Wrap(translateError(err))
		}
		m.PostedAt = time.Unix(posted, 0).UTC()
		messages = append(messages, m)
	}
	return messages, oops.Wrap(translateError(rows.Err()))
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
