package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS analytics_sessions (
	session_id  TEXT PRIMARY KEY,
	start_time  BIGINT NOT NULL,
	data        JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS analytics_meta (
	id           INT PRIMARY KEY DEFAULT 1,
	last_updated BIGINT NOT NULL
);
`

// PGStore is the transactional alternative to FileStore. Each Record locks
// only the affected session row, so writers for different sessions do not
// contend and writers for the same session cannot lose updates.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) Record(ctx context.Context, event Event) (*SessionAnalytics, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Make sure the row exists before locking it. FOR UPDATE takes no lock on
	// an absent row, and two first events racing each other would both see
	// nothing and the loser's write would drop the winner's event. With the
	// bootstrap row in place the second writer blocks on the lock and applies
	// its event to whatever the first one committed.
	if _, err := tx.Exec(ctx,
		`INSERT INTO analytics_sessions (session_id, start_time, data) VALUES ($1, $2, 'null'::jsonb)
		 ON CONFLICT (session_id) DO NOTHING`,
		event.SessionID, event.Timestamp,
	); err != nil {
		return nil, false, fmt.Errorf("ensure session row: %w", err)
	}

	var data []byte
	if err := tx.QueryRow(ctx,
		`SELECT data FROM analytics_sessions WHERE session_id = $1 FOR UPDATE`,
		event.SessionID,
	).Scan(&data); err != nil {
		return nil, false, fmt.Errorf("select session: %w", err)
	}

	// A bootstrap row holds JSON null, which decodes to a nil session.
	var session *SessionAnalytics
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("parse session: %w", err)
	}

	// applyEvent works on a one-session view of the document.
	doc := &Document{Sessions: map[string]*SessionAnalytics{}}
	if session != nil {
		doc.Sessions[event.SessionID] = session
	}
	session, completedNow := applyEvent(doc, event)

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, false, fmt.Errorf("marshal session: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE analytics_sessions SET start_time = $2, data = $3 WHERE session_id = $1`,
		event.SessionID, session.StartTime, payload,
	); err != nil {
		return nil, false, fmt.Errorf("update session: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO analytics_meta (id, last_updated) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET last_updated = EXCLUDED.last_updated`,
		doc.LastUpdated,
	); err != nil {
		return nil, false, fmt.Errorf("update meta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return session, completedNow, nil
}

func (s *PGStore) Load(ctx context.Context) (*Document, error) {
	doc := &Document{Sessions: map[string]*SessionAnalytics{}}

	rows, err := s.pool.Query(ctx, `SELECT data FROM analytics_sessions`)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var session SessionAnalytics
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("parse session: %w", err)
		}
		doc.Sessions[session.SessionID] = &session
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	err = s.pool.QueryRow(ctx, `SELECT last_updated FROM analytics_meta WHERE id = 1`).Scan(&doc.LastUpdated)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("select meta: %w", err)
	}
	return doc, nil
}
