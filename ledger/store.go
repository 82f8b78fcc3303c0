package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrSessionNotFound is returned when loading a session the store does not have.
var ErrSessionNotFound = errors.New("session not found")

// SessionSummary is one stored session in a listing.
type SessionSummary struct {
	ID        string    `db:"id"`
	Model     string    `db:"model"`
	Messages  int       `db:"message_count"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store persists conversations to sqlite so a host can resume a session
// across launches. It stores only what the bridge needs to resume — the
// remote session id, model, and message history — not the host's documents.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize session store schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession writes a session and its full ordered history, replacing any
// previous snapshot of the same session.
func (s *Store) SaveSession(ctx context.Context, id, model string, msgs []ChatMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, model, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET model = excluded.model, updated_at = excluded.updated_at`,
		id, model, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear old messages: %w", err)
	}

	for seq, msg := range msgs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, session_id, seq, role, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, id, seq, msg.Role, msg.Content, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert message %d: %w", seq, err)
		}
	}

	return tx.Commit()
}

// LoadSession reads a stored session's model and ordered history.
func (s *Store) LoadSession(ctx context.Context, id string) (string, []ChatMessage, error) {
	var model string
	err := s.db.GetContext(ctx, &model, `SELECT model FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrSessionNotFound
	}
	if err != nil {
		return "", nil, err
	}

	var msgs []ChatMessage
	err = s.db.SelectContext(ctx, &msgs,
		`SELECT id, role, content, created_at FROM messages
		 WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return "", nil, err
	}
	return model, msgs, nil
}

// ListSessions returns stored sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var out []SessionSummary
	err := s.db.SelectContext(ctx, &out,
		`SELECT s.id, s.model, s.updated_at,
		        (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id) AS message_count
		 FROM sessions s ORDER BY s.updated_at DESC`)
	return out, err
}

// DeleteSession removes a session and its messages.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
